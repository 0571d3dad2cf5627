package api

import (
	"context"
	"time"

	"todo/internal/domain"
	"todo/internal/errors"
	"todo/internal/services"
	"todo/internal/store"
	"todo/internal/validation"
)

// TodoAPI is the single entry point used by the CLI and the HTTP server.
type TodoAPI interface {
	// Profile operations
	Profile(ctx context.Context) (*Profile, error)
	SetUserName(ctx context.Context, name string) (*Profile, error)

	// Task operations
	AddTodo(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error)
	UpdateTodo(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTodo(ctx context.Context, id string) error
	ToggleTodo(ctx context.Context, id string) (*domain.Task, error)
	GetTodo(ctx context.Context, id string) (*domain.Task, error)
	ListTodos(ctx context.Context, category *domain.Category) ([]services.TodoItem, error)

	// Views
	Overview(ctx context.Context) (*services.Overview, error)
	CategoryUsage(ctx context.Context, category domain.Category) (*services.CategoryUsage, error)
	ResolveID(ctx context.Context, ref string) (string, error)
	Subscribe(fn func(*services.Overview)) (unsubscribe func())

	// Flush waits until every accepted change has been written.
	Flush(ctx context.Context) error
}

// Profile is the user's name.
type Profile struct {
	UserName *string `json:"userName"`
}

type apiImpl struct {
	store            *store.TaskStore
	services         *services.ServiceContainer
	todoValidator    *validation.TodoValidator
	profileValidator *validation.ProfileValidator
	waitForWrites    bool
	writeTimeout     time.Duration
}

// Option configures the API.
type Option func(*apiImpl)

// WithWaitForWrites makes every mutation wait for its write to reach storage.
// A failed write is returned as an error next to the already applied result.
func WithWaitForWrites(timeout time.Duration) Option {
	return func(a *apiImpl) {
		a.waitForWrites = true
		a.writeTimeout = timeout
	}
}

// WithValidator replaces the default input limits.
func WithValidator(v *validation.Validator) Option {
	return func(a *apiImpl) {
		a.todoValidator = validation.NewTodoValidator(v)
		a.profileValidator = validation.NewProfileValidator(v)
	}
}

// New creates a new API instance over an open store.
func New(s *store.TaskStore, opts ...Option) TodoAPI {
	a := &apiImpl{
		store:            s,
		services:         services.NewServiceContainer(s),
		todoValidator:    validation.NewTodoValidator(nil),
		profileValidator: validation.NewProfileValidator(nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *apiImpl) Profile(ctx context.Context) (*Profile, error) {
	return &Profile{UserName: a.store.State().UserName}, nil
}

func (a *apiImpl) SetUserName(ctx context.Context, name string) (*Profile, error) {
	cleaned, err := a.profileValidator.ValidateUserName(name)
	if err != nil {
		return nil, wrapValidation(err)
	}

	w := a.store.SetUserName(cleaned)
	return &Profile{UserName: &cleaned}, a.awaitWrite(ctx, w)
}

func (a *apiImpl) AddTodo(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	cleaned, err := a.todoValidator.ValidateDraft(draft)
	if err != nil {
		return nil, wrapValidation(err)
	}

	task, w, err := a.store.AddTodo(cleaned)
	if err != nil {
		return nil, err
	}
	return &task, a.awaitWrite(ctx, w)
}

func (a *apiImpl) UpdateTodo(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	cleaned, err := a.todoValidator.ValidatePatch(patch)
	if err != nil {
		return nil, wrapValidation(err)
	}

	task, w, err := a.store.UpdateTodo(id, cleaned)
	if err != nil {
		return nil, err
	}
	return &task, a.awaitWrite(ctx, w)
}

func (a *apiImpl) DeleteTodo(ctx context.Context, id string) error {
	w, err := a.store.DeleteTodo(id)
	if err != nil {
		return err
	}
	return a.awaitWrite(ctx, w)
}

func (a *apiImpl) ToggleTodo(ctx context.Context, id string) (*domain.Task, error) {
	task, w, err := a.store.ToggleTodo(id)
	if err != nil {
		return nil, err
	}
	return &task, a.awaitWrite(ctx, w)
}

func (a *apiImpl) GetTodo(ctx context.Context, id string) (*domain.Task, error) {
	task, _, ok := a.store.State().Find(id)
	if !ok {
		return nil, errors.NewNotFoundError("task", id)
	}
	return &task, nil
}

func (a *apiImpl) ListTodos(ctx context.Context, category *domain.Category) ([]services.TodoItem, error) {
	if category != nil && !category.IsValid() {
		return nil, errors.NewInvalidInputError("category", string(*category), "must be deep or easy")
	}
	return a.services.SearchService.SearchTasks(services.SearchCriteria{Category: category}), nil
}

func (a *apiImpl) Overview(ctx context.Context) (*services.Overview, error) {
	return a.services.ReportingService.GetOverview(), nil
}

func (a *apiImpl) CategoryUsage(ctx context.Context, category domain.Category) (*services.CategoryUsage, error) {
	if !category.IsValid() {
		return nil, errors.NewInvalidInputError("category", string(category), "must be deep or easy")
	}
	usage := a.services.ReportingService.GetCategoryUsage(category)
	return &usage, nil
}

func (a *apiImpl) ResolveID(ctx context.Context, ref string) (string, error) {
	task, err := a.services.SearchService.ResolveRef(ref)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}

// Subscribe delivers an overview of each committed snapshot.
func (a *apiImpl) Subscribe(fn func(*services.Overview)) func() {
	return a.store.Subscribe(func(s domain.State) {
		fn(services.NewReportingService(snapshot{state: s, limits: a.store}).GetOverview())
	})
}

func (a *apiImpl) Flush(ctx context.Context) error {
	return a.store.Flush(ctx)
}

// snapshot pins a StateSource to one committed state.
type snapshot struct {
	state  domain.State
	limits interface{ Limit(domain.Category) int }
}

func (s snapshot) State() domain.State { return s.state }

func (s snapshot) Limit(c domain.Category) int { return s.limits.Limit(c) }

// awaitWrite waits for w when the API is configured to, mapping outcomes to AppErrors.
func (a *apiImpl) awaitWrite(ctx context.Context, w *store.Write) error {
	if !a.waitForWrites || w == nil {
		return nil
	}
	if a.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.writeTimeout)
		defer cancel()
	}
	return w.Wait(ctx)
}

func wrapValidation(err error) error {
	if ve, ok := err.(*validation.ValidationError); ok {
		return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
	}
	return err
}
