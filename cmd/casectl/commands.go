// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	ingestModel     string
	ingestProvider  string
	ingestMaxCases  int
	ingestRepairs   int
	ingestNoAuditor bool

	generateForce bool

	downloadOutput string

	historyLimit int
)

func init() {
	ingestCmd.Flags().StringVar(&ingestModel, "model", "", "LLM model identifier")
	ingestCmd.Flags().StringVar(&ingestProvider, "provider", "openai", "LLM provider")
	ingestCmd.Flags().IntVar(&ingestMaxCases, "max-cases", 50, "maximum test cases to generate (1-100)")
	ingestCmd.Flags().IntVar(&ingestRepairs, "repair-attempts", 1, "repair attempts per invalid candidate (0-3)")
	ingestCmd.Flags().BoolVar(&ingestNoAuditor, "no-coverage-auditor", false, "disable the coverage auditor stage")

	generateCmd.Flags().BoolVar(&generateForce, "force-restart", false, "restart a completed or failed run from scratch")

	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file (default: artifact name)")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
}

func client() *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetTimeout(60 * time.Second)
}

// printJSON pretty-prints an API response body.
func printJSON(data []byte) {
	var v any
	if err := sonic.Unmarshal(data, &v); err != nil {
		fmt.Println(string(data))
		return
	}
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(string(out))
}

func fail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Upload requirement documents and create a run",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := client().R().
			SetFormData(map[string]string{
				"llm_provider":            ingestProvider,
				"model":                   ingestModel,
				"max_cases":               strconv.Itoa(ingestMaxCases),
				"repair_attempts":         strconv.Itoa(ingestRepairs),
				"enable_coverage_auditor": strconv.FormatBool(!ingestNoAuditor),
			})
		for _, path := range args {
			req.SetFile("files", path)
		}
		resp, err := req.Post("/api/ingest")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("ingest failed (%d): %s", resp.StatusCode(), resp.Body())
		}
		printJSON(resp.Body())
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <run-id>",
	Short: "Trigger or continue test case generation for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().R().
			SetBody(map[string]bool{"force_restart": generateForce}).
			Post("/api/generate/" + args[0])
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("generate failed (%d): %s", resp.StatusCode(), resp.Body())
		}
		printJSON(resp.Body())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Show the current run snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().R().Get("/api/status/" + args[0])
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("status failed (%d): %s", resp.StatusCode(), resp.Body())
		}
		printJSON(resp.Body())
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <run-id> <artifact>",
	Short: "Download one artifact (testcases.json, testcases.csv, traceability.json)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runId, artifact := args[0], args[1]
		resp, err := client().R().Get("/api/artifacts/" + runId + "/" + artifact)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("download failed (%d): %s", resp.StatusCode(), resp.Body())
		}

		output := downloadOutput
		if output == "" {
			output = filepath.Base(artifact)
		}
		if err := os.WriteFile(output, resp.Body(), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", output, len(resp.Body()))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().R().
			SetQueryParam("limit", strconv.Itoa(historyLimit)).
			Get("/api/history")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("history failed (%d): %s", resp.StatusCode(), resp.Body())
		}
		printJSON(resp.Body())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().R().Delete("/api/runs/" + args[0])
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("delete failed (%d): %s", resp.StatusCode(), resp.Body())
		}
		printJSON(resp.Body())
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health and capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().R().Get("/api/health")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fail("health failed (%d): %s", resp.StatusCode(), resp.Body())
		}
		printJSON(resp.Body())
		return nil
	},
}
