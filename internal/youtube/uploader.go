// Package youtube publishes finished videos through the YouTube Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

const DefaultTokenFile = "youtube_token.json"

var ErrNoToken = errors.New("no youtube token, run the auth command first")

// Uploader uploads videos with a stored OAuth2 token. Refreshed tokens are
// written back to the token file.
type Uploader struct {
	conf      *oauth2.Config
	tokenFile string
	logger    *slog.Logger
	now       func() time.Time
}

func New(cfg config.YouTubeConfig, logger *slog.Logger) *Uploader {
	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		tokenFile = DefaultTokenFile
	}
	return &Uploader{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  "http://localhost",
			Scopes:       []string{youtube.YoutubeUploadScope},
		},
		tokenFile: tokenFile,
		logger:    logger.With("component", "youtube"),
		now:       time.Now,
	}
}

func (u *Uploader) Upload(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error) {
	tok, err := loadToken(u.tokenFile)
	if err != nil {
		return nil, err
	}

	ts := u.conf.TokenSource(ctx, tok)
	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	f, err := os.Open(req.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	u.logger.Info("uploading video", "title", req.Title, "privacy", req.Privacy, "path", req.VideoPath)

	video, err := svc.Videos.Insert([]string{"snippet", "status"}, buildVideo(req)).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube upload: %w", err)
	}

	if fresh, err := ts.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		if err := saveToken(u.tokenFile, fresh); err != nil {
			u.logger.Warn("persist refreshed token failed", "error", err)
		}
	}

	u.logger.Info("video uploaded", "video_id", video.Id)
	return &domain.UploadResult{VideoID: video.Id, UploadedAt: u.now()}, nil
}

// AuthURL is the consent page for the one-time authorization.
func (u *Uploader) AuthURL() string {
	return u.conf.AuthCodeURL("shorts-factory", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the consent code for a token and stores it.
func (u *Uploader) Exchange(ctx context.Context, code string) error {
	tok, err := u.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}
	return saveToken(u.tokenFile, tok)
}

func buildVideo(req domain.UploadRequest) *youtube.Video {
	privacy := req.Privacy
	if privacy == "" {
		privacy = "private"
	}
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  req.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w (%s)", ErrNoToken, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("%w (%s is empty)", ErrNoToken, path)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}
