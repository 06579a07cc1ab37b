/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carverauto/rscapture/pkg/console"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	defaultState, err := console.DefaultStatePath()
	if err != nil {
		defaultState = "rscapture-console.json"
	}

	baseURL := flag.String("url", "http://localhost:5000", "rscapture service base URL")
	apiKey := flag.String("api-key", os.Getenv("RSCAPTURE_API_KEY"), "API key sent as X-API-Key")
	statePath := flag.String("state", defaultState, "Path to the console state file")
	flag.Parse()

	client, err := console.NewClient(console.ClientConfig{BaseURL: *baseURL, APIKey: *apiKey})
	if err != nil {
		return err
	}

	st, err := console.LoadState(*statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring console state: %v\n", err)

		st = &console.State{}
	}

	p := tea.NewProgram(console.NewModel(client, st, *statePath), tea.WithAltScreen())

	_, err = p.Run()

	return err
}
