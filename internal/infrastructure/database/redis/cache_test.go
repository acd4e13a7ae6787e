package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/complyops/deadline-engine/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = &Client{
		rdb:    db,
		logger: logging.NewNopLogger(),
	}
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(),
		WithPrefix("test:"),
		WithJitter(0),
	)
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedRecord struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func (s *CacheTestSuite) TestGetHit() {
	val := cachedRecord{ID: "r-1", Count: 3}
	data, _ := json.Marshal(val)

	s.mock.ExpectGet("test:key1").SetVal(string(data))

	var dest cachedRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest cachedRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGetNullMarkerIsMiss() {
	s.mock.ExpectGet("test:key1").SetVal(nullValueMarker)

	var dest cachedRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestSetUsesDefaultTTL() {
	val := cachedRecord{ID: "r-1", Count: 3}
	data, _ := json.Marshal(val)

	s.mock.ExpectSet("test:key1", data, 10*time.Minute).SetVal("OK")

	err := s.cache.Set(context.Background(), "key1", val, 0)
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)

	err := s.cache.Delete(context.Background(), "k1", "k2")
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *CacheTestSuite) TestGetOrSetHitSkipsLoader() {
	val := cachedRecord{ID: "r-1", Count: 3}
	data, _ := json.Marshal(val)

	s.mock.ExpectGet("test:key1").SetVal(string(data))

	loaderCalled := false
	var dest cachedRecord
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		loaderCalled = true
		return nil, nil
	})

	assert.NoError(s.T(), err)
	assert.False(s.T(), loaderCalled)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSetMissLoadsAndCaches() {
	val := cachedRecord{ID: "r-2", Count: 7}
	data, _ := json.Marshal(&val)

	s.mock.ExpectGet("test:key2").RedisNil()
	s.mock.ExpectSet("test:key2", data, time.Minute).SetVal("OK")

	var dest cachedRecord
	err := s.cache.GetOrSet(context.Background(), "key2", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return &val, nil
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSetNilLoaderCachesNull() {
	s.mock.ExpectGet("test:absent").RedisNil()
	s.mock.ExpectSet("test:absent", nullValueMarker, 30*time.Second).SetVal("OK")

	var dest cachedRecord
	err := s.cache.GetOrSet(context.Background(), "absent", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})

	assert.Equal(s.T(), ErrCacheMiss, err)
}

func (s *CacheTestSuite) TestGetOrSetLoaderErrorPropagates() {
	s.mock.ExpectGet("test:key3").RedisNil()

	loadErr := pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "store down")
	var dest cachedRecord
	err := s.cache.GetOrSet(context.Background(), "key3", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, loadErr
	})

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}
