package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dealscope/internal/utils"
	"dealscope/pkg/dataset"
	"dealscope/pkg/feed"
	"dealscope/pkg/pipeline"
	"dealscope/pkg/storage"
)

// dbPath resolves the snapshot database location: the --dbpath flag wins,
// then the config file, then the default next to the working directory.
func dbPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("dbpath"); p != "" {
		return p
	}
	return viper.GetString("database.path")
}

// schemaForFeed starts from the default column names and applies any
// per-feed overrides from the config file (feeds.<key>.columns.*).
func schemaForFeed(key string) dataset.Schema {
	schema := dataset.DefaultSchema()
	override := func(dst *string, column string) {
		if v := viper.GetString("feeds." + key + ".columns." + column); v != "" {
			*dst = v
		}
	}
	override(&schema.Associate, "associate")
	override(&schema.Date, "date")
	override(&schema.AssociateError, "associate_error")
	override(&schema.TeamError, "team_error")
	override(&schema.ErrorType, "error_type")
	override(&schema.Duration, "duration")
	override(&schema.ItemName, "item_name")
	return schema
}

// loadFeeds builds the pipeline configuration for every feed declared under
// the feeds key. Feeds without a URL are skipped with a warning so a fresh
// config file doesn't produce confusing fetch errors.
func loadFeeds() ([]pipeline.FeedConfig, error) {
	declared := viper.GetStringMap("feeds")
	if len(declared) == 0 {
		return nil, fmt.Errorf("no feeds configured; set feeds.<name>.url in the config file")
	}

	var cfgs []pipeline.FeedConfig
	for key := range declared {
		url := viper.GetString("feeds." + key + ".url")
		if url == "" {
			utils.Log.Warnf("feed %s has no url configured, skipping", key)
			continue
		}
		label := viper.GetString("feeds." + key + ".label")
		if label == "" {
			label = key
		}
		format := viper.GetString("feeds." + key + ".format")
		if format != "" && format != feed.FormatCSV && format != feed.FormatGviz {
			return nil, fmt.Errorf("feed %s: unknown format %q", key, format)
		}
		cfgs = append(cfgs, pipeline.FeedConfig{
			Key:    key,
			Label:  label,
			URL:    url,
			Format: format,
			Schema: schemaForFeed(key),
		})
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no feeds with a url configured")
	}
	return cfgs, nil
}

// newManager wires the full pipeline: HTTP client, snapshot store, and one
// dataset per configured feed. The caller owns closing the returned DB.
func newManager(cmd *cobra.Command) (*pipeline.Manager, *storage.DB, error) {
	cfgs, err := loadFeeds()
	if err != nil {
		return nil, nil, err
	}

	db, err := storage.Open(dbPath(cmd))
	if err != nil {
		return nil, nil, err
	}

	timeout := time.Duration(viper.GetInt("http.timeout")) * time.Second
	client := feed.NewClient(timeout)

	return pipeline.NewManager(cfgs, client, db, utils.Log), db, nil
}
