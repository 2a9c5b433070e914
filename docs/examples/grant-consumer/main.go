// Docgate Grant Consumer Example
//
// This is a minimal example of how to request a signed grant for an object
// you own and download it through the returned URL.
//
// Usage:
//   export DOCGATE_URL="http://localhost:8080"
//   export DOCGATE_TOKEN="eyJ..."            # a bearer token for your user
//   go run main.go merged/<your-uid>/report.pdf
//
// The program asks Docgate for a short-lived grant on the given path, then
// fetches the object through the signed URL and writes it to the current
// directory.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"time"
)

// GrantRequest is the body for POST /grants.
type GrantRequest struct {
	Path       string `json:"path"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// GrantResponse is the subset of the grant payload this example uses.
type GrantResponse struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ResourcePath string    `json:"resource_path"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	baseURL := os.Getenv("DOCGATE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("DOCGATE_TOKEN")
	if token == "" {
		log.Fatal("DOCGATE_TOKEN environment variable is required")
	}
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <object-path>", os.Args[0])
	}
	objectPath := os.Args[1]

	client := &http.Client{Timeout: 30 * time.Second}

	grant, err := requestGrant(client, baseURL, token, objectPath)
	if err != nil {
		log.Fatalf("Requesting grant: %v", err)
	}

	log.Printf("✓ Grant %s issued for %s", grant.ID, grant.ResourcePath)
	log.Printf("  Expires: %s", grant.ExpiresAt.Format(time.RFC3339))

	outName := path.Base(grant.ResourcePath)
	if err := download(client, grant.URL, outName); err != nil {
		log.Fatalf("Downloading object: %v", err)
	}

	log.Printf("✓ Wrote %s", outName)
}

// requestGrant asks Docgate for a signed grant on objectPath.
func requestGrant(client *http.Client, baseURL, token, objectPath string) (*GrantResponse, error) {
	body, err := json.Marshal(GrantRequest{Path: objectPath})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/grants", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
			return nil, fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var grant GrantResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// download fetches the signed URL and writes the body to outName. The signed
// URL carries its own authorization, so no bearer token is attached.
func download(client *http.Client, url, outName string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(outName)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return err
	}
	return f.Close()
}
