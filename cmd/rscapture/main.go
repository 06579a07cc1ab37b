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
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carverauto/rscapture/cmd/rscapture/app"
	"github.com/carverauto/rscapture/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/rscapture/rscapture.json", "Path to rscapture config file")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	seedKV := flag.Bool("seed-kv", false, "Copy the config file into the NATS KV bucket and exit")
	flag.Parse()

	if *showVersion {
		return json.NewEncoder(os.Stdout).Encode(version.GetInfo())
	}

	if *seedKV {
		wrote, err := app.SeedKV(context.Background(), *configPath)
		if err != nil {
			return err
		}

		fmt.Printf("seeded=%t\n", wrote)

		return nil
	}

	return app.Run(context.Background(), app.Options{ConfigPath: *configPath})
}
