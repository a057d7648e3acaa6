package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"

	"github.com/ifuryst/postq/internal/config"
	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service/publisher"
)

const tweetsEndpoint = "/2/tweets"

// TwitterPublisher posts text to the X v2 API with OAuth 1.0a user context
type TwitterPublisher struct {
	logger *zap.Logger
	config config.XConfig
	client *http.Client
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

func NewTwitterPublisher(cfg config.XConfig, logger *zap.Logger) *TwitterPublisher {
	base := &http.Client{Timeout: cfg.Timeout}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)

	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APIKeySecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)

	// oauth1 keeps only the transport of the context client
	client := oauthConfig.Client(ctx, token)
	client.Timeout = cfg.Timeout

	return &TwitterPublisher{
		logger: logger,
		config: cfg,
		client: client,
	}
}

func (p *TwitterPublisher) GetPlatformName() string {
	return "x"
}

func (p *TwitterPublisher) ValidateConfig() error {
	var missing []string
	if p.config.APIKey == "" {
		missing = append(missing, "X_API_KEY")
	}
	if p.config.APIKeySecret == "" {
		missing = append(missing, "X_API_KEY_SECRET")
	}
	if p.config.AccessToken == "" {
		missing = append(missing, "X_ACCESS_TOKEN")
	}
	if p.config.AccessTokenSecret == "" {
		missing = append(missing, "X_ACCESS_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return models.MissingCredentials(missing)
	}
	return nil
}

func (p *TwitterPublisher) Publish(ctx context.Context, content publisher.PublishContent) (*publisher.PublishResult, error) {
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(createTweetRequest{Text: content.Text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	p.logger.Info("Publishing to X",
		zap.String("date", content.Metadata["date"]),
		zap.String("slot", content.Metadata["slot"]),
		zap.String("pillar", content.Metadata["pillar"]),
		zap.String("fingerprint", content.Metadata["fingerprint"]))

	url := strings.TrimRight(p.config.BaseURL, "/") + tweetsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("x API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var created createTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if created.Data.ID == "" {
		return nil, fmt.Errorf("x API response has no tweet id")
	}

	p.logger.Debug("Tweet created", zap.String("tweet_id", created.Data.ID))

	return &publisher.PublishResult{
		PublishID:   created.Data.ID,
		URL:         "https://x.com/i/web/status/" + created.Data.ID,
		PublishedAt: time.Now().UTC(),
	}, nil
}
