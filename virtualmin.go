/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/subosito/gotenv"
)

const remotePath = "/virtual-server/remote.cgi"

type Credentials struct {
	Username string
	Password string
}

type Client struct {
	cfg   *Config
	creds Credentials
	http  *http.Client
}

func newClient(cfg *Config, creds Credentials) *Client {
	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	// Copy so the timeout never leaks into a caller-supplied client.
	c := *httpClient
	c.Timeout = cfg.timeout

	return &Client{
		cfg:   cfg,
		creds: creds,
		http:  &c,
	}
}

// listURL interpolates server and domain as given; callers must pass
// values that are already safe to place in a URL.
func (c *Client) listURL(server, domain, program string) string {
	return fmt.Sprintf("https://%s:%d%s?program=%s&domain=%s&multiline&json=1",
		server, c.cfg.port, remotePath, program, domain)
}

// fetchMailboxList issues a single GET against the remote API and returns the
// raw body. Any non-2xx status is treated as a failed request.
func (c *Client) fetchMailboxList(ctx context.Context, server, domain, program string) (string, error) {
	startTime := time.Now()

	url := c.listURL(server, domain, program)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mailquota/"+releaseVersion)

	logf(c.cfg, "FETCH: GET %s", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrTransport, server, resp.Status)
	}

	logf(c.cfg, "FETCH: %s (%s) from %s in %s",
		resp.Status,
		humanReadableSize(uint64(len(body))),
		server,
		time.Since(startTime).Round(time.Microsecond),
	)

	return string(body), nil
}

// loadEnvFile populates unset variables from path. A missing file is fine.
func loadEnvFile(path string) error {
	err := gotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: loading %s: %w", ErrConfig, path, err)
	}

	return nil
}
