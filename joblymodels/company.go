package joblymodels

import (
	"context"
	"errors"
	"fmt"

	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"github.com/lunagic/jobly/joblytools"
)

type Company struct {
	Handle       string  `db:"handle,primaryKey" json:"handle"`
	Name         string  `db:"name" json:"name"`
	Description  string  `db:"description" json:"description"`
	NumEmployees *int64  `db:"num_employees" json:"numEmployees"`
	LogoURL      *string `db:"logo_url" json:"logoUrl"`
}

func (e Company) TableStructure() database.Table {
	return database.Table{
		Name: "companies",
		Indexes: []database.TableIndex{
			{
				Name:    "ix_companies_name",
				Columns: []string{"name"},
				Unique:  true,
			},
		},
	}
}

type CompanyWithJobs struct {
	Company
	Jobs []Job `json:"jobs"`
}

var companyColumns = sqlbuild.ColumnMap{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

var companySchema = schema{
	fields: map[string]fieldRule{
		"handle":       {Kind: fieldString, MinLength: 1},
		"name":         {Kind: fieldString, MinLength: 1},
		"description":  {Kind: fieldString},
		"numEmployees": {Kind: fieldInteger, Nullable: true, Minimum: bound(0)},
		"logoUrl":      {Kind: fieldString, Nullable: true},
	},
	required: []string{"handle", "name"},
}

var companyUpdateSchema = companySchema.forUpdate("handle")

type NewCompany struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

func (newCompany NewCompany) Payload() *sqlbuild.Payload {
	return sqlbuild.NewPayload().
		Set("handle", newCompany.Handle).
		Set("name", newCompany.Name).
		Set("description", newCompany.Description).
		Set("numEmployees", joblytools.Deref(newCompany.NumEmployees)).
		Set("logoUrl", joblytools.Deref(newCompany.LogoURL))
}

func NewCompanyModel(service *database.Service, jobs *JobModel) (*CompanyModel, error) {
	companies, err := database.NewRepository[string, Company](service)
	if err != nil {
		return nil, err
	}

	return &CompanyModel{
		companies: companies,
		jobs:      jobs,
	}, nil
}

type CompanyModel struct {
	companies database.Repository[string, Company]
	jobs      *JobModel
}

func (model *CompanyModel) Create(ctx context.Context, newCompany NewCompany) (Company, error) {
	payload := newCompany.Payload()
	if err := companySchema.validate(payload); err != nil {
		return Company{}, err
	}

	if _, err := model.companies.Insert(ctx, payload, companyColumns); err != nil {
		return Company{}, translateError("companies", err)
	}

	return model.find(ctx, newCompany.Handle)
}

func (model *CompanyModel) FindAll(ctx context.Context) ([]Company, error) {
	return model.companies.SelectMultiple(ctx, sqlbuild.Predicate{}, "name")
}

// Get returns the company together with its jobs.
func (model *CompanyModel) Get(ctx context.Context, handle string) (CompanyWithJobs, error) {
	company, err := model.find(ctx, handle)
	if err != nil {
		return CompanyWithJobs{}, err
	}

	jobs, err := model.jobs.ForCompany(ctx, handle)
	if err != nil {
		return CompanyWithJobs{}, err
	}

	return CompanyWithJobs{
		Company: company,
		Jobs:    jobs,
	}, nil
}

func (model *CompanyModel) Update(ctx context.Context, handle string, payload *sqlbuild.Payload) (Company, error) {
	if payload.Len() == 0 {
		return Company{}, sqlbuild.ErrEmptyPayload
	}

	if err := companyUpdateSchema.validate(payload); err != nil {
		return Company{}, err
	}

	company, err := model.companies.Update(ctx, handle, payload, companyColumns)
	if err != nil {
		return Company{}, translateError("companies", err)
	}

	return company, nil
}

// Remove deletes the company. Its jobs go with it. The company row stays
// locked while its jobs are listed so none can be added in between.
func (model *CompanyModel) Remove(ctx context.Context, handle string) error {
	jobs := []Job{}
	err := model.companies.Service().Transaction(ctx, func(ctx context.Context) error {
		if _, err := model.companies.Lock(ctx, handle); err != nil {
			return err
		}

		var err error
		jobs, err = model.jobs.ForCompany(ctx, handle)
		if err != nil {
			return err
		}

		return model.companies.Delete(ctx, handle)
	})
	if err != nil {
		return translateError("companies", err)
	}

	model.jobs.forget(ctx, joblytools.Map(jobs, func(job Job) int64 {
		return job.ID
	})...)
	for _, job := range jobs {
		model.jobs.publish(ctx, JobEventRemoved, job)
	}

	return nil
}

func (model *CompanyModel) find(ctx context.Context, handle string) (Company, error) {
	company, err := model.companies.SelectSingle(ctx, handle)
	if err != nil {
		return Company{}, translateError("companies", err)
	}

	return company, nil
}

func translateError(table string, err error) error {
	if errors.Is(err, database.ErrNoRows) {
		return ErrNotFound
	}

	if errors.Is(err, database.ErrDuplicateKey) || errors.Is(err, database.ErrForeignKeyViolation) {
		return err
	}

	return fmt.Errorf("%s: %w", table, err)
}
