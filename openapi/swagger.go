// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of CORPQ.
//
//  CORPQ is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CORPQ is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CORPQ.  If not, see <https://www.gnu.org/licenses/>.
package openapi

import (
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

const (
	// swaggerUIAPIVersion is used for the document served to
	// the Swagger UI bundled with swaggo/files which renders
	// 3.0 documents only
	swaggerUIAPIVersion = "3.0.3"
)

var registerOnce sync.Once

// SwaggerDoc provides the API description to the swag registry
// read by the Swagger UI (/docs/doc.json)
type SwaggerDoc struct {
	version   string
	publicURL string
}

func (sd *SwaggerDoc) ReadDoc() string {
	resp := NewResponse(sd.version, sd.publicURL)
	resp.OpenAPI = swaggerUIAPIVersion
	ans, err := sonic.MarshalString(resp)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode API description for Swagger UI")
		return "{}"
	}
	return ans
}

// RegisterSwaggerDoc registers the API description as the default
// swag document. Only the first call has an effect.
func RegisterSwaggerDoc(ver, publicURL string) {
	registerOnce.Do(func() {
		swag.Register(swag.Name, &SwaggerDoc{version: ver, publicURL: publicURL})
	})
}
