// Zaparoo Play
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Play.
//
// Zaparoo Play is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Play is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Play.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

const systemSection = "system"

var resolutionRe = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)

// SystemOptions are the desktop and process options shared by every runner,
// read from the "system" section of a game config.
type SystemOptions struct {
	Resolution         string `mapstructure:"resolution" validate:"omitempty,resolution"`
	OSSWrapper         string `mapstructure:"oss_wrapper"`
	CompizNoDecoration string `mapstructure:"compiz_nodecoration"`
	CompizFullscreen   string `mapstructure:"compiz_fullscreen"`
	KillSwitch         string `mapstructure:"killswitch" validate:"omitempty,startswith=/"`
	HidePanels         bool   `mapstructure:"hide_panels"`
	ResetDesktop       bool   `mapstructure:"reset_desktop"`
	ResetPulse         bool   `mapstructure:"reset_pulse"`
}

// AudioWrapper returns the command tokens to prefix the game command with,
// or nil if no wrapper is configured.
func (o *SystemOptions) AudioWrapper() []string {
	w := strings.TrimSpace(o.OSSWrapper)
	if w == "" || w == "none" {
		return nil
	}
	return strings.Fields(w)
}

var systemValidator = newSystemValidator()

func newSystemValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// tag is static, registration can't fail
	_ = v.RegisterValidation("resolution", func(fl validator.FieldLevel) bool {
		return resolutionRe.MatchString(fl.Field().String())
	})
	return v
}

// DecodeSection decodes a raw config section into dest using mapstructure
// tags. Values are weakly typed so "true", 1 and true are all accepted for
// booleans.
func DecodeSection(raw map[string]any, dest any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dest,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode section: %w", err)
	}
	return nil
}

func decodeSystem(raw map[string]any) (SystemOptions, error) {
	var opts SystemOptions
	if raw == nil {
		return opts, nil
	}
	if err := DecodeSection(raw, &opts); err != nil {
		return SystemOptions{}, err
	}
	if err := systemValidator.Struct(&opts); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, formatValidationError(fe))
			}
			return SystemOptions{}, fmt.Errorf("invalid system options: %s", strings.Join(msgs, "; "))
		}
		return SystemOptions{}, fmt.Errorf("validation failed: %w", err)
	}
	return opts, nil
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "resolution":
		return fmt.Sprintf("resolution %q must look like 1024x768", fe.Value())
	case "startswith":
		return fmt.Sprintf("%s %q must be an absolute path", strings.ToLower(fe.Field()), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
	}
}
