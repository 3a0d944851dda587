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
		Use:   "beautycenter-cli",
		Short: "Beauty Center balance CLI",
		Long:  `A command line interface for the Beauty Center balance and gift card API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Balance commands
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance operations",
	}

	balanceCmd.AddCommand(&cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0] + "/balance")
		},
	})

	balanceCmd.AddCommand(&cobra.Command{
		Use:   "history <account-id>",
		Short: "Show an account's balance transactions",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0] + "/balance/history")
		},
	})

	// Gift card commands
	giftCardCmd := &cobra.Command{
		Use:   "giftcard",
		Short: "Gift card operations",
	}

	giftCardCmd.AddCommand(&cobra.Command{
		Use:   "redeem <code> <account-id>",
		Short: "Redeem a gift card code into an account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/gift-cards/redeem", map[string]any{
				"code":       args[0],
				"account_id": args[1],
			})
		},
	})

	giftCardCmd.AddCommand(&cobra.Command{
		Use:   "verify <token>",
		Short: "Look up a gift card by verification token",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/gift-cards/verify/" + args[0])
		},
	})

	giftCardCmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Expire all overdue gift cards now",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/gift-cards/sweep-expired", nil)
		},
	})

	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(giftCardCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func post(path string, payload map[string]any) {
	client := &http.Client{Timeout: timeout}

	body := "{}"
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = string(raw)
	}

	resp, err := client.Post(baseURL+path, "application/json", strings.NewReader(body))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}

	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}
