// Package docstore reads workout logs and weight history from the Firestore
// database used by the mobile app.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/claude/carga/internal/models"
)

// Config selects the Firebase project and collection names.
type Config struct {
	ProjectID       string
	CredentialsFile string
	LogsCollection  string
	UsersCollection string
}

// Client reads documents through a Firestore client.
type Client struct {
	fs    *firestore.Client
	logs  string
	users string
}

// Open connects to Firestore through a Firebase app. Application default
// credentials are used when no credentials file is configured.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore init: %w", err)
	}
	return NewClient(fs, cfg.LogsCollection, cfg.UsersCollection), nil
}

// NewClient wraps an existing Firestore client.
func NewClient(fs *firestore.Client, logsCollection, usersCollection string) *Client {
	if logsCollection == "" {
		logsCollection = "logs"
	}
	if usersCollection == "" {
		usersCollection = "usuarios"
	}
	return &Client{fs: fs, logs: logsCollection, users: usersCollection}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.fs.Close()
}

// Logs returns every log document owned by uid.
func (c *Client) Logs(ctx context.Context, uid string) ([]models.Log, error) {
	iter := c.fs.Collection(c.logs).Where("usuarioId", "==", uid).Documents(ctx)
	defer iter.Stop()

	var logs []models.Log
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading logs of %s: %w", uid, err)
		}
		logs = append(logs, LogFromDocument(snap.Ref.ID, snap.Data()))
	}
	return logs, nil
}

// Bodyweights returns the historicoPeso array of the user's profile. A
// missing profile yields an empty history.
func (c *Client) Bodyweights(ctx context.Context, uid string) ([]models.BodyweightEntry, error) {
	snap, err := c.fs.Collection(c.users).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile of %s: %w", uid, err)
	}
	return BodyweightsFromDocument(snap.Data()), nil
}
