package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "unifarm-ledger-cli",
		Short: "UniFarm ledger CLI tool",
		Long:  `A command line interface for operating the UniFarm ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconciliation operations",
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run a fleet-wide balance-vs-entries check",
		Run: func(cmd *cobra.Command, args []string) {
			reconcileReport()
		},
	}

	accountCmd := &cobra.Command{
		Use:   "account [account-id]",
		Short: "Check one account's balance against its entry sum",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			reconcileAccount(args[0])
		},
	}

	mismatchedCmd := &cobra.Command{
		Use:   "mismatched",
		Short: "List accounts whose balance disagrees with the entry sum",
		Run: func(cmd *cobra.Command, args []string) {
			listMismatched()
		},
	}

	reconcileCmd.AddCommand(reportCmd, accountCmd, mismatchedCmd)

	var balanceCurrency string
	balanceCmd := &cobra.Command{
		Use:   "balance [user-id]",
		Short: "Show a user's current balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showBalance(args[0], balanceCurrency)
		},
	}
	balanceCmd.Flags().StringVar(&balanceCurrency, "currency", "UNI", "Currency (UNI or TON)")

	rootCmd.AddCommand(reconcileCmd, balanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reconcileReport() {
	result := getJSON("/admin/v1/reconciliation")

	total, _ := result["total_accounts"].(float64)
	reconciled, _ := result["reconciled_accounts"].(float64)

	if int(total) == int(reconciled) {
		fmt.Printf("Reconciliation PASSED: %d/%d accounts consistent\n", int(reconciled), int(total))
		return
	}

	fmt.Printf("Reconciliation FAILED: %d/%d accounts consistent\n", int(reconciled), int(total))
	if discrepancies, ok := result["discrepancies"].([]any); ok {
		for _, d := range discrepancies {
			if m, ok := d.(map[string]any); ok {
				fmt.Printf("  account %v: recorded=%v calculated=%v\n",
					m["account_id"], m["recorded_balance"], m["calculated_balance"])
			}
		}
	}
	os.Exit(1)
}

func reconcileAccount(accountID string) {
	result := getJSON("/admin/v1/reconciliation/accounts/" + accountID)

	if ok, _ := result["is_reconciled"].(bool); ok {
		fmt.Printf("Account %s reconciled: balance=%v\n", accountID, result["recorded_balance"])
		return
	}

	fmt.Printf("Account %s MISMATCHED: recorded=%v calculated=%v difference=%v\n",
		accountID, result["recorded_balance"], result["calculated_balance"], result["difference"])
	os.Exit(1)
}

func listMismatched() {
	result := getJSON("/admin/v1/reconciliation/mismatched")

	ids, _ := result["account_ids"].([]any)
	if len(ids) == 0 {
		fmt.Println("No mismatched accounts")
		return
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	fmt.Printf("Mismatched accounts (%d):\n  %s\n", len(ids), strings.Join(parts, "\n  "))
	os.Exit(1)
}

func showBalance(userID, currency string) {
	result := getJSONAs("/api/v1/balance?currency="+currency, userID)
	fmt.Printf("User %s: %v %v\n", userID, result["balance"], result["currency"])
}

func getJSON(path string) map[string]any {
	return getJSONAs(path, "")
}

func getJSONAs(path, userID string) map[string]any {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	return result
}
