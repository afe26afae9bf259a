package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// planctl sends routing queries to a running route-planner server and prints
// the resulting feature collection. One-shot with arguments, interactive
// without.
func main() {
	// Load .env file (ignore error if not found)
	_ = godotenv.Load()

	serverURL := getEnv("PLANNER_URL", "http://localhost:8080")
	userID := os.Getenv("PLANNER_USER_ID")

	// Optimization of a large plan can take minutes; the server enforces its
	// own upstream timeouts.
	client := &http.Client{Timeout: 3 * time.Minute}

	if len(os.Args) > 1 {
		query := strings.Join(os.Args[1:], " ")
		if err := plan(client, serverURL, userID, query); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Plan CLI ready (server=%s)\n", serverURL)
	fmt.Fprintln(os.Stderr, "Enter your routing query (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "quit" || query == "exit" || query == "q" {
			break
		}

		if err := plan(client, serverURL, userID, query); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
	}

	fmt.Fprintln(os.Stderr, "Goodbye!")
}

func plan(client *http.Client, serverURL, userID, query string) error {
	payload := map[string]string{"query": query}
	if userID != "" {
		payload["user_id"] = userID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Planning: %s\n", query)

	resp, err := client.Post(serverURL+"/api/v1/plan_route", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	if runID := resp.Header.Get("X-Plan-Run-ID"); runID != "" {
		fmt.Fprintf(os.Stderr, "Run ID: %s\n", runID)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
