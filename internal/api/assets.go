package api

import (
	"context"
	"fmt"
	"net/http"
)

// CreateAsset registers a new asset in a database.
func (c *Client) CreateAsset(ctx context.Context, asset Asset) (*Asset, error) {
	var out Asset
	path := fmt.Sprintf("/database/%s/assets", asset.DatabaseID)
	if err := c.do(ctx, http.MethodPut, path, asset, &out); err != nil {
		return nil, fmt.Errorf("creating asset %s: %w", asset.AssetID, err)
	}
	return &out, nil
}

// GetAsset fetches one asset.
func (c *Client) GetAsset(ctx context.Context, databaseID, assetID string) (*Asset, error) {
	var out Asset
	path := fmt.Sprintf("/database/%s/assets/%s", databaseID, assetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("getting asset %s: %w", assetID, err)
	}
	return &out, nil
}

// ListAssets lists the assets of a database, following pagination.
func (c *Client) ListAssets(ctx context.Context, databaseID string) ([]Asset, error) {
	var assets []Asset
	token := ""
	for {
		path := fmt.Sprintf("/database/%s/assets", databaseID)
		if token != "" {
			path += "?startingToken=" + token
		}
		var out listEnvelope[Asset]
		if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, fmt.Errorf("listing assets: %w", err)
		}
		assets = append(assets, out.Message.Items...)
		if out.Message.NextToken == "" {
			return assets, nil
		}
		token = out.Message.NextToken
	}
}

// ArchiveAsset soft-deletes an asset; archived assets can be restored
// server-side but no longer accept uploads.
func (c *Client) ArchiveAsset(ctx context.Context, databaseID, assetID string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/archiveAsset", databaseID, assetID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// DeleteAsset permanently deletes an archived asset.
func (c *Client) DeleteAsset(ctx context.Context, databaseID, assetID string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/deleteAsset", databaseID, assetID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateDatabase creates an asset database.
func (c *Client) CreateDatabase(ctx context.Context, db Database) error {
	return c.do(ctx, http.MethodPut, "/database", db, nil)
}

// GetDatabase fetches one database.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var out Database
	if err := c.do(ctx, http.MethodGet, "/database/"+databaseID, nil, &out); err != nil {
		return nil, fmt.Errorf("getting database %s: %w", databaseID, err)
	}
	return &out, nil
}

// ListDatabases lists all visible databases, following pagination.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var dbs []Database
	token := ""
	for {
		path := "/database"
		if token != "" {
			path += "?startingToken=" + token
		}
		var out listEnvelope[Database]
		if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, fmt.Errorf("listing databases: %w", err)
		}
		dbs = append(dbs, out.Message.Items...)
		if out.Message.NextToken == "" {
			return dbs, nil
		}
		token = out.Message.NextToken
	}
}

// DeleteDatabase deletes an empty database.
func (c *Client) DeleteDatabase(ctx context.Context, databaseID string) error {
	return c.do(ctx, http.MethodDelete, "/database/"+databaseID, nil, nil)
}

// GetMetadata fetches the metadata map of an asset.
func (c *Client) GetMetadata(ctx context.Context, databaseID, assetID string) (map[string]string, error) {
	var out struct {
		Metadata map[string]string `json:"metadata"`
	}
	path := fmt.Sprintf("/database/%s/assets/%s/metadata", databaseID, assetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("getting metadata: %w", err)
	}
	return out.Metadata, nil
}

// SetMetadata merges key/value pairs into an asset's metadata.
func (c *Client) SetMetadata(ctx context.Context, databaseID, assetID string, metadata map[string]string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/metadata", databaseID, assetID)
	return c.do(ctx, http.MethodPost, path, map[string]any{"metadata": metadata}, nil)
}

// DeleteMetadata removes one metadata key from an asset.
func (c *Client) DeleteMetadata(ctx context.Context, databaseID, assetID, key string) error {
	path := fmt.Sprintf("/database/%s/assets/%s/metadata/%s", databaseID, assetID, key)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Search runs a simple term search over assets.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search/simple", req, &out); err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	return &out, nil
}
