/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "rmreport",
	Short: "LLM-assisted wealth management report generator",
	Long: `A CLI application that generates structured wealth management reports for
Relationship Manager meetings. Each report is drafted by a language-model
backend, scored by a second LLM pass acting as judge, and refined until the
score threshold is met or the iteration budget runs out. The accepted report
is translated to British English and both renderings are saved alongside a
full iteration transcript.

Supported backends: OpenAI-compatible APIs, Doubao (Volcengine)

Use "rmreport run --help" for report generation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
