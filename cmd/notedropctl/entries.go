package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

func newClient(apiURL, apiKey string) *resty.Client {
	return resty.New().
		SetBaseURL(apiURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
}

func runList(apiURL, apiKey, category, archived string, review bool, out io.Writer) error {
	req := newClient(apiURL, apiKey).R()
	if category != "" {
		req.SetQueryParam("category", category)
	}
	if archived != "" {
		req.SetQueryParam("archived", archived)
	}
	if review {
		req.SetQueryParam("needsReview", "true")
	}
	resp, err := req.Get("/api/entries")
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func runClassify(apiURL, apiKey, text string, out io.Writer) error {
	resp, err := newClient(apiURL, apiKey).R().
		SetBody(map[string]string{"text": text}).
		Post("/api/entries/classify")
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func runGet(apiURL, apiKey, entryID string, out io.Writer) error {
	resp, err := newClient(apiURL, apiKey).R().Get("/api/entries/" + entryID)
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func runDelete(apiURL, apiKey, entryID string, out io.Writer) error {
	resp, err := newClient(apiURL, apiKey).R().Delete("/api/entries/" + entryID)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNoContent {
		_, err = fmt.Fprintln(out, "deleted")
		return err
	}
	return printResponse(resp, out)
}

func runDigest(apiURL, apiKey string, out io.Writer) error {
	resp, err := newClient(apiURL, apiKey).R().Get("/api/digest")
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func printResponse(resp *resty.Response, out io.Writer) error {
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err := fmt.Fprintln(out, resp.String())
	return err
}
