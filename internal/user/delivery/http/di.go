package http

import (
	"github.com/tair/library-service/internal/user/domain"
	"github.com/tair/library-service/internal/user/usecase/command"
	"github.com/tair/library-service/internal/user/usecase/query"
)

// CommandHandlers holds all user command handlers
type CommandHandlers struct {
	RegisterHandler     *command.RegisterUserHandler
	LoginHandler        *command.LoginUserHandler
	UpdateHandler       *command.UpdateUserHandler
	DeleteHandler       *command.DeleteUserHandler
	ChangeRoleHandler   *command.ChangeRoleHandler
	ToggleActiveHandler *command.ToggleActiveHandler
}

// QueryHandlers holds all user query handlers
type QueryHandlers struct {
	GetUserHandler *query.GetUserHandler
	ListHandler    *query.ListUsersHandler
	StatsHandler   *query.GetStatsHandler
}

// NewUserHandlerWithDI creates a new user handler using dependency injection
func NewUserHandlerWithDI(
	commands *CommandHandlers,
	queries *QueryHandlers,
	repo domain.UserRepository,
) *UserHandler {
	h := &UserHandler{
		registerHandler:     commands.RegisterHandler,
		loginHandler:        commands.LoginHandler,
		updateHandler:       commands.UpdateHandler,
		deleteHandler:       commands.DeleteHandler,
		changeRoleHandler:   commands.ChangeRoleHandler,
		toggleActiveHandler: commands.ToggleActiveHandler,
		getUserHandler:      queries.GetUserHandler,
		listHandler:         queries.ListHandler,
		statsHandler:        queries.StatsHandler,
		repo:                repo,
	}
	h.initMetrics()
	return h
}
