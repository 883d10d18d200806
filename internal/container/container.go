package container

import (
	"fmt"
	"log/slog"
	"net/http"

	database "github.com/FACorreiaa/go-posts-api/app/db"
	"github.com/FACorreiaa/go-posts-api/config"
	"github.com/FACorreiaa/go-posts-api/internal/api/auth"
	"github.com/FACorreiaa/go-posts-api/internal/api/post"
	"github.com/FACorreiaa/go-posts-api/internal/api/user"
	"github.com/FACorreiaa/go-posts-api/internal/router"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// Repositories are the storage dependencies of the HTTP layer.
type Repositories struct {
	Auth auth.AuthRepo
	User user.UserRepo
	Post post.PostRepo
}

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Tokens       *auth.TokenManager
	Denylist     *auth.Denylist
	AuthHandler  *auth.HandlerImpl
	UserHandler  *user.HandlerImpl
	PostHandler  *post.HandlerImpl
	Authenticate func(http.Handler) http.Handler
}

// NewContainer wires the Postgres repositories over db.
func NewContainer(cfg *config.Config, db database.DB, logger *slog.Logger) (*Container, error) {
	return Build(cfg, Repositories{
		Auth: auth.NewPostgresAuthRepo(db, logger),
		User: user.NewPostgresUserRepo(db, logger),
		Post: post.NewPostgresPostRepo(db, logger),
	}, logger)
}

// Build wires services and handlers over the given repositories.
func Build(cfg *config.Config, repos Repositories, logger *slog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	defaultRole, err := types.ParseRole(cfg.Auth.DefaultRole)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConfiguration, err)
	}

	var denylist *auth.Denylist
	if cfg.JWT.RevocationEnabled {
		denylist = auth.NewDenylist()
		logger.Info("Token revocation enabled")
	}

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := auth.NewAuthService(repos.Auth, hasher, tokens, denylist, defaultRole, logger)
	userService := user.NewUserService(repos.User, logger)
	postService := post.NewPostService(repos.Post, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Tokens:       tokens,
		Denylist:     denylist,
		AuthHandler:  auth.NewHandlerImpl(authService, logger),
		UserHandler:  user.NewHandlerImpl(userService, logger),
		PostHandler:  post.NewHandlerImpl(postService, logger),
		Authenticate: auth.Authenticate(logger, tokens, repos.Auth, denylist),
	}, nil
}

// Handler returns the complete HTTP handler for the API server.
func (c *Container) Handler() http.Handler {
	return router.NewHandler(&router.Config{
		AuthHandler:            c.AuthHandler,
		UserHandler:            c.UserHandler,
		PostHandler:            c.PostHandler,
		AuthenticateMiddleware: c.Authenticate,
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
		Logger:                 c.Logger,
	}, c.Config.Server.Timeout)
}
