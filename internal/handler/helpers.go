// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"github.com/olegiv/pileoffame-go/internal/service"
	"github.com/olegiv/pileoffame-go/internal/store"
)

func publicUserJSON(u store.User) service.PublicUser {
	return service.PublicUser{ID: u.ID, Username: u.Username, Name: u.Name, ImageURL: u.ImageURL}
}
