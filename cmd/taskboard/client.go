package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskboard-api/internal/client"
	"taskboard-api/internal/config"
)

// clientFlags are shared by the commands that talk to a running server
type clientFlags struct {
	apiURL   string
	token    string
	email    string
	password string
	boardID  string
}

func (f *clientFlags) register(cmd *cobra.Command, withBoard bool) {
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "API base url including base path (default client.base_url)")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token")
	cmd.Flags().StringVar(&f.email, "email", "", "sign in with this email instead of --token")
	cmd.Flags().StringVar(&f.password, "password", "", "password for --email")
	if withBoard {
		cmd.Flags().StringVar(&f.boardID, "board", "", "board id")
		_ = cmd.MarkFlagRequired("board")
	}
}

// connect builds a signed-in API client
func (f *clientFlags) connect(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (client.BoardAPIClient, error) {
	baseURL := f.apiURL
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}
	api := client.NewBoardAPIClient(baseURL, f.token, cfg.Client.Timeout, logger, nil)

	switch {
	case f.email != "":
		if _, err := api.Login(cmd.Context(), f.email, f.password); err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
	case f.token == "":
		return nil, errors.New("either --token or --email is required")
	}
	return api, nil
}

func (f *clientFlags) board() (uuid.UUID, error) {
	id, err := uuid.Parse(f.boardID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --board: %w", err)
	}
	return id, nil
}

// websocketURL turns http(s)://host/api into ws(s)://host/api/ws
func (f *clientFlags) websocketURL(cfg *config.Config) (string, error) {
	base := f.apiURL
	if base == "" {
		base = cfg.Client.BaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"
	return u.String(), nil
}
