// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/models"
)

func TestNewAppInfoService(t *testing.T) {
	tests := []struct {
		name        string
		cfgVersion  string
		build       models.AppBuildInfo
		wantVersion string
		wantErr     error
	}{
		{
			name:        "build version",
			build:       models.NewAppBuildInfo("v1.0.0", "2026-01-01", "abc"),
			wantVersion: "v1.0.0",
		},
		{
			name:        "config overrides build",
			cfgVersion:  "2.5.1",
			build:       models.NewAppBuildInfo("v1.0.0", "", ""),
			wantVersion: "2.5.1",
		},
		{
			name:        "config only",
			cfgVersion:  "3.1.4",
			wantVersion: "3.1.4",
		},
		{
			name:    "no version anywhere",
			wantErr: ErrVersionIsNotSpecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewAppInfoService(config.App{Version: tt.cfgVersion}, tt.build)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, svc.GetAppVersion(context.Background()))

			info := svc.GetBuildInfo(context.Background())
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.build.Commit, info.Commit)
		})
	}
}
