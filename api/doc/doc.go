// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package doc serves the OpenAPI document of the ledger api.
package doc

import (
	"embed"
	"sync"

	"gopkg.in/yaml.v3"
)

// FS holds swell.yaml.
//
//go:embed swell.yaml
var FS embed.FS

// Info is the info block of the document.
type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

var loadInfo = sync.OnceValue(func() Info {
	content, err := FS.ReadFile("swell.yaml")
	if err != nil {
		panic(err)
	}
	var doc struct {
		Info Info `yaml:"info"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		panic(err)
	}
	return doc.Info
})

// Version returns the api version, sent in the x-swell-ver header.
func Version() string {
	return loadInfo().Version
}

// Title returns the document title.
func Title() string {
	return loadInfo().Title
}
