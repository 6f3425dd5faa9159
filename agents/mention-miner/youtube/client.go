package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"comment-insights/shared/config"
	"comment-insights/shared/logger"
	"comment-insights/shared/monitoring"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// TitleNotFound is returned by FetchTitle when the lookup fails or the video
// does not exist.
const TitleNotFound = "title not found"

// maxPageSize is the largest page commentThreads.list accepts.
const maxPageSize = 100

type Client struct {
	service *youtube.Service
}

// NewClient authenticates with the configured API key, or with a cached
// OAuth token when only token_file is set. Extra options are appended last.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig, opts ...option.ClientOption) (*Client, error) {
	var clientOpts []option.ClientOption

	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{youtube.YoutubeForceSslScope},
			Endpoint:     google.Endpoint,
		}

		token, err := getToken(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to get OAuth token: %w", err)
		}

		tokenSource := &tokenSaver{
			config:    oauthConfig,
			token:     token,
			tokenFile: cfg.TokenFile,
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	}

	service, err := youtube.NewService(ctx, append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// FetchComments pages through the top-level comments of a video until
// maxResults comments are collected or no pages remain. A failed page stops
// the loop and whatever was collected so far is returned.
func (c *Client) FetchComments(ctx context.Context, videoID string, maxResults int) []string {
	var comments []string
	pageToken := ""

	for len(comments) < maxResults {
		pageSize := min(maxPageSize, maxResults-len(comments))

		call := c.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(int64(pageSize)).
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			logger.Errorf("Error fetching comments for %s (kept %d): %v", videoID, len(comments), err)
			monitoring.YouTubeRequests.WithLabelValues("commentThreads", "error").Inc()
			break
		}
		monitoring.YouTubeRequests.WithLabelValues("commentThreads", "ok").Inc()

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			comments = append(comments, item.Snippet.TopLevelComment.Snippet.TextDisplay)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(comments) > maxResults {
		comments = comments[:maxResults]
	}

	monitoring.CommentsFetched.Add(float64(len(comments)))
	return comments
}

// FetchTitle looks up the display title of a video. It never fails: errors
// are logged and TitleNotFound is returned instead.
func (c *Client) FetchTitle(ctx context.Context, videoID string) string {
	resp, err := c.service.Videos.List([]string{"snippet"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		logger.Errorf("Error fetching title for %s: %v", videoID, err)
		monitoring.YouTubeRequests.WithLabelValues("videos", "error").Inc()
		return TitleNotFound
	}
	monitoring.YouTubeRequests.WithLabelValues("videos", "ok").Inc()

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		logger.Warnf("Video %s not found", videoID)
		return TitleNotFound
	}

	return resp.Items[0].Snippet.Title
}

// tokenSaver wraps an oauth2.TokenSource to automatically save refreshed tokens
// so they survive restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex // Protects concurrent token refresh operations
}

// Token implements oauth2.TokenSource.
func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Get the token (this will refresh if needed)
	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		logger.Infof("Token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			logger.Warnf("Failed to save refreshed token: %v", err)
		}
	}

	return newToken, nil
}

// getToken loads a cached token. Expired tokens are kept as long as they carry
// a refresh token, since tokenSaver refreshes them on first use.
func getToken(tokenFile string) (*oauth2.Token, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read token file %s: %w", tokenFile, err)
	}

	if tok.RefreshToken != "" {
		logger.Infof("Loaded token from file (expires: %v)", tok.Expiry)
		return tok, nil
	}
	if tok.Valid() {
		return tok, nil
	}

	return nil, fmt.Errorf("token in %s is expired and has no refresh token; set youtube.api_key or refresh the token", tokenFile)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
