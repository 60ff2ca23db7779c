package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
)

// ErrBlobNotFound means the path did not exist at the requested change, or the
// host refused to serve it. Callers move on to the next candidate path.
var ErrBlobNotFound = common.WrapError(common.ErrNotFound, "blob")

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// GitHubClient talks to the GitHub REST API for one repository
type GitHubClient struct {
	httpClient *common.HTTPClient
	cfg        config.HostConfig
	logger     zerolog.Logger
	headers    map[string]string
}

// NewGitHubClient creates a client for cfg.Owner/cfg.Repo
func NewGitHubClient(httpClient *common.HTTPClient, cfg config.HostConfig, logger zerolog.Logger) (*GitHubClient, error) {
	if httpClient == nil {
		return nil, common.NewValidationError("http_client", nil, "http client cannot be nil")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, common.NewConfigurationError("host", "owner/repo", "repository owner and name are required")
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = config.DefaultHostPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = config.DefaultHostMaxPages
	}

	headers := map[string]string{
		"Accept": "application/vnd.github.v3+json",
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}

	return &GitHubClient{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger.With().Str("component", "GitHubClient").Logger(),
		headers:    headers,
	}, nil
}

// ForRepository returns a client for another repository on the same host,
// named "owner/name". Credentials and paging limits are shared.
func (c *GitHubClient) ForRepository(repo string) (*GitHubClient, error) {
	owner, name, ok := strings.Cut(strings.Trim(repo, "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, common.NewValidationError("repo", repo, "expected owner/name")
	}

	cfg := c.cfg
	cfg.Owner = owner
	cfg.Repo = name
	return &GitHubClient{
		httpClient: c.httpClient,
		cfg:        cfg,
		logger:     c.logger.With().Str("repo", owner+"/"+name).Logger(),
		headers:    c.headers,
	}, nil
}

// ListChanges returns the commits touching path, in host order (newest first),
// following pagination up to the configured page limit.
func (c *GitHubClient) ListChanges(ctx context.Context, path string) ([]models.ChangeRecord, error) {
	query := url.Values{}
	query.Set("path", path)
	query.Set("per_page", fmt.Sprint(c.cfg.PerPage))
	pageURL := c.repoURL("commits") + "?" + query.Encode()

	var records []models.ChangeRecord
	for page := 1; pageURL != "" && page <= c.cfg.MaxPages; page++ {
		resp, err := c.get(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		var commits []commitPayload
		if err := json.Unmarshal(resp.Body, &commits); err != nil {
			return nil, common.WrapErrorf(common.ErrMalformedPayload, "decoding commits for %s: %v", path, err)
		}
		for _, commit := range commits {
			record, err := commit.toChangeRecord()
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}

		pageURL = parseNextLink(resp.Header("Link"))
		if pageURL != "" && page == c.cfg.MaxPages {
			c.logger.Warn().Str("path", path).Int("max_pages", c.cfg.MaxPages).Msg("Commit listing truncated at page limit")
		}
	}

	return records, nil
}

// GetBlobAt fetches path as it existed at ref. Any non-success response yields
// ErrBlobNotFound; transport failures are returned as they are.
func (c *GitHubClient) GetBlobAt(ctx context.Context, path, ref string) (*models.Blob, error) {
	blobURL := c.repoURL("contents/"+escapePath(path)) + "?ref=" + url.QueryEscape(ref)

	resp, err := c.get(ctx, blobURL)
	if err != nil {
		if common.StatusCodeOf(err) != 0 {
			return nil, fmt.Errorf("%w: %s@%s: %v", ErrBlobNotFound, path, ref, err)
		}
		return nil, err
	}

	var payload contentPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, common.WrapErrorf(common.ErrMalformedPayload, "decoding contents of %s@%s: %v", path, ref, err)
	}
	if payload.Type != "" && payload.Type != "file" {
		return nil, fmt.Errorf("%w: %s@%s is a %s", ErrBlobNotFound, path, ref, payload.Type)
	}

	return &models.Blob{
		Path:           path,
		Ref:            ref,
		EncodedContent: payload.Content,
		Encoding:       payload.Encoding,
	}, nil
}

// ListDocuments returns the names of the directories under the documents directory.
func (c *GitHubClient) ListDocuments(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, c.repoURL("contents/"+escapePath(c.cfg.DocumentsDir)))
	if err != nil {
		return nil, err
	}

	var entries []directoryEntry
	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, common.WrapErrorf(common.ErrMalformedPayload, "decoding listing of %s: %v", c.cfg.DocumentsDir, err)
	}

	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == "dir" {
			slugs = append(slugs, entry.Name)
		}
	}
	return slugs, nil
}

func (c *GitHubClient) get(ctx context.Context, target string) (*common.HTTPResponse, error) {
	resp, err := c.httpClient.Get(ctx, target, c.headers)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, common.NewHTTPErrorWithURL(resp.StatusCode, strings.TrimSpace(firstBytes(resp.Body, 200)), target)
	}
	return resp, nil
}

func (c *GitHubClient) repoURL(suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s/%s",
		c.cfg.BaseURL(), url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo), suffix)
}

// escapePath escapes each segment of a repository path, keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// parseNextLink extracts the rel="next" target of an RFC 8288 Link header.
func parseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if m := nextLinkPattern.FindStringSubmatch(part); m != nil {
			return m[1]
		}
	}
	return ""
}

func firstBytes(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n])
	}
	return string(body)
}
