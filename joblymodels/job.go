package joblymodels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lunagic/jobly/joblyservices/cache"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/queue"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"github.com/lunagic/jobly/joblytools"
)

type Job struct {
	ID            int64    `db:"id,primaryKey,autoIncrement" json:"id"`
	Title         string   `db:"title" json:"title"`
	Salary        *int64   `db:"salary" json:"salary"`
	Equity        *float64 `db:"equity" json:"equity"`
	CompanyHandle string   `db:"company_handle,foreignKey=companies.handle" json:"companyHandle"`
}

func (e Job) TableStructure() database.Table {
	return database.Table{
		Name: "jobs",
		Indexes: []database.TableIndex{
			{
				Name:    "ix_jobs_title_company_handle",
				Columns: []string{"title", "company_handle"},
				Unique:  true,
			},
		},
	}
}

var jobColumns = sqlbuild.ColumnMap{
	"companyHandle": "company_handle",
}

var jobSchema = schema{
	fields: map[string]fieldRule{
		"title":         {Kind: fieldString, MinLength: 1},
		"salary":        {Kind: fieldInteger, Nullable: true, Minimum: bound(0)},
		"equity":        {Kind: fieldNumber, Nullable: true, Minimum: bound(0), Maximum: bound(1)},
		"companyHandle": {Kind: fieldString, MinLength: 1},
	},
	required: []string{"title", "companyHandle"},
}

// Jobs cannot move between companies, so updates never carry the handle.
var jobUpdateSchema = jobSchema.forUpdate("companyHandle")

type NewJob struct {
	Title         string   `json:"title"`
	Salary        *int64   `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

func (newJob NewJob) Payload() *sqlbuild.Payload {
	return sqlbuild.NewPayload().
		Set("title", newJob.Title).
		Set("salary", joblytools.Deref(newJob.Salary)).
		Set("equity", joblytools.Deref(newJob.Equity)).
		Set("companyHandle", newJob.CompanyHandle)
}

type JobModelConfigFunc func(model *JobModel)

// WithJobCache serves Get from the cache and drops entries on every change.
func WithJobCache(repository *cache.Repository[int64, Job]) JobModelConfigFunc {
	return func(model *JobModel) {
		model.cache = repository
	}
}

// WithJobEvents publishes a JobEvent for every stored change.
func WithJobEvents(events queue.Queue[JobEvent]) JobModelConfigFunc {
	return func(model *JobModel) {
		model.events = &events
	}
}

func WithJobLogger(logger *slog.Logger) JobModelConfigFunc {
	return func(model *JobModel) {
		model.logger = logger
	}
}

func NewJobModel(service *database.Service, configFuncs ...JobModelConfigFunc) (*JobModel, error) {
	jobs, err := database.NewRepository[int64, Job](service)
	if err != nil {
		return nil, err
	}

	model := &JobModel{
		jobs:   jobs,
		logger: slog.Default(),
	}

	for _, configFunc := range configFuncs {
		configFunc(model)
	}

	return model, nil
}

type JobModel struct {
	jobs   database.Repository[int64, Job]
	cache  *cache.Repository[int64, Job]
	events *queue.Queue[JobEvent]
	logger *slog.Logger
}

// Create stores a job. A job with the same title at the same company is
// refused with ErrDuplicateJob.
func (model *JobModel) Create(ctx context.Context, newJob NewJob) (Job, error) {
	payload := newJob.Payload()
	if err := jobSchema.validate(payload); err != nil {
		return Job{}, err
	}

	existing, err := model.jobs.SelectMultiple(ctx, sqlbuild.Predicate{
		Where:  `"title" = $1 AND "company_handle" = $2`,
		Values: []any{newJob.Title, newJob.CompanyHandle},
	})
	if err != nil {
		return Job{}, err
	}

	if len(existing) > 0 {
		return Job{}, ErrDuplicateJob
	}

	id, err := model.jobs.Insert(ctx, payload, jobColumns)
	if err != nil {
		return Job{}, model.translateError(err)
	}

	job, err := model.jobs.SelectSingle(ctx, id)
	if err != nil {
		return Job{}, model.translateError(err)
	}

	model.publish(ctx, JobEventCreated, job)

	return job, nil
}

// FindAll returns the jobs matching filters ordered by title.
func (model *JobModel) FindAll(ctx context.Context, filters sqlbuild.SearchFilters) ([]Job, error) {
	columns := sqlbuild.DefaultSearchColumns
	columns.Like = model.jobs.Service().LikeOperator()

	predicate, err := sqlbuild.BuildSearchPredicate(filters, columns)
	if err != nil {
		return nil, err
	}

	return model.jobs.SelectMultiple(ctx, predicate, "title", "id")
}

func (model *JobModel) ForCompany(ctx context.Context, handle string) ([]Job, error) {
	return model.jobs.SelectMultiple(ctx, sqlbuild.Predicate{
		Where:  `"company_handle" = $1`,
		Values: []any{handle},
	}, "id")
}

func (model *JobModel) Get(ctx context.Context, id int64) (Job, error) {
	load := func(ctx context.Context) (Job, error) {
		job, err := model.jobs.SelectSingle(ctx, id)
		if err != nil {
			return Job{}, model.translateError(err)
		}

		return job, nil
	}

	if model.cache == nil {
		return load(ctx)
	}

	job, err := model.cache.Remember(ctx, id, load)
	if errors.Is(err, cache.ErrNotStored) {
		model.logger.WarnContext(ctx, "Job Cache Set Failed",
			"id", id,
			"error", err,
		)

		return job, nil
	}

	return job, err
}

// Update applies a partial update. Only title, salary and equity can change.
func (model *JobModel) Update(ctx context.Context, id int64, payload *sqlbuild.Payload) (Job, error) {
	if payload.Len() == 0 {
		return Job{}, sqlbuild.ErrEmptyPayload
	}

	if err := jobUpdateSchema.validate(payload); err != nil {
		return Job{}, err
	}

	// Forgotten before and after the write. A read that loaded the old row
	// before the update can still store it afterwards, until the entry expires.
	model.forget(ctx, id)
	job, err := model.jobs.Update(ctx, id, payload, jobColumns)
	if err != nil {
		return Job{}, model.translateError(err)
	}

	model.forget(ctx, id)
	model.publish(ctx, JobEventUpdated, job)

	return job, nil
}

func (model *JobModel) Remove(ctx context.Context, id int64) error {
	if err := model.jobs.Delete(ctx, id); err != nil {
		return model.translateError(err)
	}

	model.forget(ctx, id)
	model.publish(ctx, JobEventRemoved, Job{ID: id})

	return nil
}

func (model *JobModel) forget(ctx context.Context, ids ...int64) {
	if model.cache == nil {
		return
	}

	for _, id := range ids {
		if err := model.cache.Delete(ctx, id); err != nil {
			model.logger.WarnContext(ctx, "Job Cache Delete Failed",
				"id", id,
				"error", err,
			)
		}
	}
}

// publish failures are logged, the change itself is already stored
func (model *JobModel) publish(ctx context.Context, eventType JobEventType, job Job) {
	if model.events == nil {
		return
	}

	if err := model.events.Publish(ctx, JobEvent{
		Type: eventType,
		Job:  job,
		At:   time.Now().UTC(),
	}); err != nil {
		model.logger.WarnContext(ctx, "Job Event Publish Failed",
			"type", eventType,
			"id", job.ID,
			"error", err,
		)
	}
}

func (model *JobModel) translateError(err error) error {
	switch {
	case errors.Is(err, database.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, database.ErrDuplicateKey):
		return ErrDuplicateJob
	case errors.Is(err, database.ErrForeignKeyViolation):
		return ErrValidation{Field: "companyHandle", Reason: "does not match a company"}
	}

	return fmt.Errorf("jobs: %w", err)
}
