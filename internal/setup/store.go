package setup

import (
	"context"

	"github.com/bornholm/weekplan/internal/adapter/cache"
	gormAdapter "github.com/bornholm/weekplan/internal/adapter/gorm"
	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/pkg/errors"
)

var getGormStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*gormAdapter.Store, error) {
	db, err := getGormDatabaseFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return gormAdapter.NewStore(db), nil
})

var getGoalStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.GoalStore, error) {
	store, err := getGormStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cacheConf := conf.Storage.Database.Cache.Goals
	if !cacheConf.Enabled {
		return store, nil
	}

	return cache.NewGoalStore(store, cacheConf.Size, cacheConf.TTL), nil
})
