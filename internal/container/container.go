package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-marketplace-api/config"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/upload"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router can auto-wire modules from these singletons.

var (
	cfg    *config.Config
	logger *logrus.Logger

	userRepo repository.UserRepository
	itemRepo repository.ItemRepository

	redisClient *redis.Client
	esClient    *elasticsearch.Client
	uploads     upload.Storage

	tokenManager *helpers.TokenManager
	rabbitPub    *helpers.RabbitPublisher
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

func SetUserRepo(r repository.UserRepository) { userRepo = r }
func GetUserRepo() repository.UserRepository  { return userRepo }

func SetItemRepo(r repository.ItemRepository) { itemRepo = r }
func GetItemRepo() repository.ItemRepository  { return itemRepo }

func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetUploads(s upload.Storage) { uploads = s }
func GetUploads() upload.Storage  { return uploads }

func SetTokens(m *helpers.TokenManager) { tokenManager = m }
func GetTokens() *helpers.TokenManager  { return tokenManager }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
