package config

// Example usage of Config Manager to update YAML configuration at runtime
//
// Example 1: Load configuration
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Example 2: Update configuration and save to YAML file
// (the "config set" command does this for one key)
//
//	manager := config.GetManager()
//
//	err := manager.Update(map[string]interface{}{
//		"youtube.region_code": "US",
//		"cron.schedule":       "0 */30 * * * *",
//		"performance.max_idle_conns": 50,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Example 3: Reload on every edit of the file
//
//	manager := config.NewManager("config.yaml")
//	go manager.Watch(ctx, func(cfg *config.Config) {
//		logger.Info().Msgf("config reloaded, region %s", cfg.YouTubeRegionCode)
//	}, nil)
