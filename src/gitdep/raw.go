package gitdep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/alfatm/sparse-crates/src/config"
)

const rawFetchTimeout = 30 * time.Second

var rawClient = &http.Client{
	Timeout: rawFetchTimeout,
	Transport: &http.Transport{
		MaxIdleConns:    16,
		MaxConnsPerHost: 4,
	},
}

// resolveGitHTTP fetches manifests as raw files over HTTP. Custom host
// rules are matched first, then the well-known GitHub/GitLab URL shapes.
func resolveGitHTTP(ctx context.Context, repoURL, ref, crate string, opts Options) Resolution {
	fetch := func(path string) ([]byte, error) {
		rawURL, token, err := rawFileURL(repoURL, ref, path, opts.Hosts)
		if err != nil {
			return nil, err
		}
		return fetchRawFile(ctx, rawURL, token, opts.UserAgent)
	}
	return resolveViaFetch(fetch, crate, opts.logger())
}

// rawFileURL converts a repository URL plus ref and file path into a
// raw-content URL, returning the bearer token to use with it.
func rawFileURL(repoURL, ref, path string, hosts []config.GitHost) (rawURL, token string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("gitdep: invalid repository URL %q: %w", repoURL, err)
	}

	owner, repo, err := splitOwnerRepo(u.Path)
	if err != nil {
		return "", "", fmt.Errorf("gitdep: repository URL %q: %w", repoURL, err)
	}

	for _, h := range hosts {
		re, rerr := regexp.Compile(h.Host)
		if rerr != nil || !re.MatchString(u.Host) {
			continue
		}
		// Custom hosts keep the repository URL's scheme: self-hosted
		// forges may serve plain HTTP.
		scheme := u.Scheme
		if scheme == "" {
			scheme = "https"
		}
		switch h.Kind {
		case "gitlab":
			return fmt.Sprintf("%s://%s/%s/%s/-/raw/%s/%s", scheme, u.Host, owner, repo, ref, path), h.Token, nil
		default: // github-style
			return fmt.Sprintf("%s://%s/%s/%s/raw/%s/%s", scheme, u.Host, owner, repo, ref, path), h.Token, nil
		}
	}

	switch u.Host {
	case "github.com", "www.github.com":
		return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, repo, ref, path), "", nil
	case "gitlab.com", "www.gitlab.com":
		return fmt.Sprintf("https://gitlab.com/%s/%s/-/raw/%s/%s", owner, repo, ref, path), "", nil
	default:
		return "", "", fmt.Errorf("gitdep: no raw-file mapping for host %q", u.Host)
	}
}

// splitOwnerRepo extracts the first two path segments, trimming the
// conventional .git suffix.
func splitOwnerRepo(urlPath string) (owner, repo string, err error) {
	parts := strings.Split(strings.Trim(urlPath, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot determine owner/repository from path %q", urlPath)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// fetchRawFile GETs a raw file with optional bearer token and user
// agent.
func fetchRawFile(ctx context.Context, rawURL, token, userAgent string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, rawFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("gitdep: create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := rawClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gitdep: GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gitdep: GET %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveOutput))
	if err != nil {
		return nil, fmt.Errorf("gitdep: read %s: %w", rawURL, err)
	}
	return data, nil
}
