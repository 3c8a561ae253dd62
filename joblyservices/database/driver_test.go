package database_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"gotest.tools/v3/assert"
)

type testCompany struct {
	Handle       string `db:"handle,primaryKey"`
	Name         string `db:"name"`
	NumEmployees *int64 `db:"num_employees"`
}

func (e testCompany) TableStructure() database.Table {
	return database.Table{
		Name: "test_companies",
		Indexes: []database.TableIndex{
			{
				Name:    "ix_test_companies_name",
				Columns: []string{"name"},
				Unique:  true,
			},
		},
	}
}

type testJob struct {
	ID            int64    `db:"id,primaryKey,autoIncrement"`
	Title         string   `db:"title"`
	Salary        *int64   `db:"salary"`
	Equity        *float64 `db:"equity"`
	CompanyHandle string   `db:"company_handle,foreignKey=test_companies.handle"`
}

func (e testJob) TableStructure() database.Table {
	return database.Table{
		Name: "test_jobs",
		Indexes: []database.TableIndex{
			{
				Name:    "ix_test_jobs_company_handle",
				Columns: []string{"company_handle"},
			},
		},
	}
}

type unsupportedEntity struct {
	ID       int64    `db:"id,primaryKey"`
	Settings []string `db:"settings"`
}

func (e unsupportedEntity) TableStructure() database.Table {
	return database.Table{
		Name: "unsupported",
	}
}

const selectTestJobs = `SELECT "id", "title", "salary", "equity", "company_handle" FROM "test_jobs"`

func testSuite(t *testing.T, driver database.Driver, configFuncs ...database.ServiceConfigFunc) {
	configFuncs = append(configFuncs, database.WithLogger(slog.Default()))
	service, err := database.New(driver, configFuncs...)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	assert.NilError(t, service.Ping(t.Context()))

	entities := []database.Entity{
		testCompany{},
		testJob{},
	}

	{ // Assert that the migration actually made changes
		numberOfChanges, err := service.AutoMigrate(t.Context(), entities)
		assert.NilError(t, err)
		assert.Assert(t, numberOfChanges != 0)
	}

	{ // Assert that running the same migration again does not result in any changes
		numberOfChanges, err := service.AutoMigrate(t.Context(), entities)
		assert.NilError(t, err)
		assert.Equal(t, 0, numberOfChanges)
	}

	{ // Unsupported field types are reported
		_, err := service.AutoMigrate(t.Context(), []database.Entity{unsupportedEntity{}})
		target := database.ErrUnsupportedType{}
		assert.Assert(t, errors.As(err, &target))
		assert.Equal(t, "[]string", target.Type)
	}

	companyHandle := uuid.NewString()
	{ // Insert without an auto increment column
		id, err := service.Insert(
			t.Context(),
			"test_companies",
			sqlbuild.NewPayload().
				Set("handle", companyHandle).
				Set("name", "Anderson, Arias and Morrow").
				Set("numEmployees", int64(245)),
			sqlbuild.ColumnMap{"numEmployees": "num_employees"},
			"",
		)
		assert.NilError(t, err)
		assert.Equal(t, int64(0), id)
	}

	{ // Duplicate primary keys are reported as such
		_, err := service.Insert(
			t.Context(),
			"test_companies",
			sqlbuild.NewPayload().
				Set("handle", companyHandle).
				Set("name", uuid.NewString()),
			nil,
			"",
		)
		assert.ErrorIs(t, err, database.ErrDuplicateKey)
	}

	{ // Duplicate unique index values are reported as such
		_, err := service.Insert(
			t.Context(),
			"test_companies",
			sqlbuild.NewPayload().
				Set("handle", uuid.NewString()).
				Set("name", "Anderson, Arias and Morrow"),
			nil,
			"",
		)
		assert.ErrorIs(t, err, database.ErrDuplicateKey)
	}

	jobIDs := []int64{}
	for i, job := range []struct {
		title  string
		salary any
		equity any
	}{
		{title: "Senior Engineer", salary: int64(150000), equity: 0.05},
		{title: "Junior engineer", salary: int64(60000), equity: 0.0},
		{title: "Accountant", salary: nil, equity: nil},
	} {
		id, err := service.Insert(
			t.Context(),
			"test_jobs",
			sqlbuild.NewPayload().
				Set("title", job.title).
				Set("salary", job.salary).
				Set("equity", job.equity).
				Set("companyHandle", companyHandle),
			sqlbuild.ColumnMap{"companyHandle": "company_handle"},
			"id",
		)
		assert.NilError(t, err)
		if i > 0 {
			assert.Assert(t, id > jobIDs[i-1])
		}
		jobIDs = append(jobIDs, id)
	}

	{ // Missing foreign key targets are reported as such
		_, err := service.Insert(
			t.Context(),
			"test_jobs",
			sqlbuild.NewPayload().
				Set("title", "Orphan").
				Set("company_handle", uuid.NewString()),
			nil,
			"id",
		)
		assert.ErrorIs(t, err, database.ErrForeignKeyViolation)
	}

	{ // Select every row
		jobs, err := database.Select[testJob](t.Context(), service, selectTestJobs+` ORDER BY "id"`)
		assert.NilError(t, err)
		assert.Equal(t, 3, len(jobs))
		assert.Equal(t, "Senior Engineer", jobs[0].Title)
		assert.Equal(t, int64(150000), *jobs[0].Salary)
		assert.Equal(t, 0.05, *jobs[0].Equity)
		assert.Assert(t, jobs[2].Salary == nil)
		assert.Assert(t, jobs[2].Equity == nil)
	}

	{ // Search with the driver's case-insensitive match
		columns := sqlbuild.DefaultSearchColumns
		columns.Like = service.LikeOperator()

		title := "engineer"
		minSalary := 100000.0
		predicate, err := sqlbuild.BuildSearchPredicate(sqlbuild.SearchFilters{Title: &title}, columns)
		assert.NilError(t, err)

		jobs, err := database.Select[testJob](
			t.Context(),
			service,
			fmt.Sprintf(`%s %s ORDER BY "id"`, selectTestJobs, predicate.Clause()),
			predicate.Values...,
		)
		assert.NilError(t, err)
		assert.Equal(t, 2, len(jobs))

		predicate, err = sqlbuild.BuildSearchPredicate(sqlbuild.SearchFilters{Title: &title, MinSalary: &minSalary}, columns)
		assert.NilError(t, err)

		jobs, err = database.Select[testJob](
			t.Context(),
			service,
			fmt.Sprintf(`%s %s`, selectTestJobs, predicate.Clause()),
			predicate.Values...,
		)
		assert.NilError(t, err)
		assert.Equal(t, 1, len(jobs))
		assert.Equal(t, jobIDs[0], jobs[0].ID)
	}

	{ // Equity filters split the rows
		columns := sqlbuild.DefaultSearchColumns
		columns.Like = service.LikeOperator()

		for hasEquity, expected := range map[bool]int{true: 1, false: 2} {
			predicate, err := sqlbuild.BuildSearchPredicate(sqlbuild.SearchFilters{HasEquity: &hasEquity}, columns)
			assert.NilError(t, err)

			jobs, err := database.Select[testJob](
				t.Context(),
				service,
				fmt.Sprintf(`%s %s`, selectTestJobs, predicate.Clause()),
				predicate.Values...,
			)
			assert.NilError(t, err)
			assert.Equal(t, expected, len(jobs))
		}
	}

	{ // Partial update
		setClause, err := sqlbuild.BuildSetClause(
			sqlbuild.NewPayload().
				Set("title", "Staff Engineer").
				Set("equity", nil),
			nil,
		)
		assert.NilError(t, err)

		result, err := service.Execute(
			t.Context(),
			fmt.Sprintf(`UPDATE "test_jobs" SET %s WHERE "id" = $%d`, setClause.Clause, setClause.NextPlaceholder()),
			append(setClause.Values, jobIDs[0])...,
		)
		assert.NilError(t, err)

		rowsAffected, err := result.RowsAffected()
		assert.NilError(t, err)
		assert.Equal(t, int64(1), rowsAffected)

		job, err := database.SelectSingle[testJob](t.Context(), service, selectTestJobs+` WHERE "id" = $1`, jobIDs[0])
		assert.NilError(t, err)
		assert.Equal(t, "Staff Engineer", job.Title)
		assert.Equal(t, int64(150000), *job.Salary)
		assert.Assert(t, job.Equity == nil)
	}

	{ // Updating with the same values still counts the row
		result, err := service.Execute(
			t.Context(),
			`UPDATE "test_jobs" SET "title"=$1 WHERE "id" = $2`,
			"Staff Engineer",
			jobIDs[0],
		)
		assert.NilError(t, err)

		rowsAffected, err := result.RowsAffected()
		assert.NilError(t, err)
		assert.Equal(t, int64(1), rowsAffected)
	}

	{ // Missing rows
		_, err := database.SelectSingle[testJob](t.Context(), service, selectTestJobs+` WHERE "id" = $1`, int64(-1))
		assert.ErrorIs(t, err, database.ErrNoRows)
	}

	{ // Blank statements are refused
		_, err := service.Execute(t.Context(), "   ")
		assert.ErrorIs(t, err, database.ErrBlankQuery)
	}

	{ // Transactions commit when the work succeeds
		handle := uuid.NewString()
		err := service.Transaction(t.Context(), func(ctx context.Context) error {
			_, err := service.Execute(ctx, `INSERT INTO "test_companies" ("handle", "name") VALUES ($1, $2)`, handle, handle)
			return err
		})
		assert.NilError(t, err)

		_, err = database.SelectSingle[testCompany](t.Context(), service, `SELECT "handle", "name", "num_employees" FROM "test_companies" WHERE "handle" = $1`, handle)
		assert.NilError(t, err)
	}

	{ // Transactions roll back when the work fails
		handle := uuid.NewString()
		expectedErr := errors.New(uuid.NewString())
		err := service.Transaction(t.Context(), func(ctx context.Context) error {
			if _, err := service.Execute(ctx, `INSERT INTO "test_companies" ("handle", "name") VALUES ($1, $2)`, handle, handle); err != nil {
				return err
			}

			// Nested calls join the open transaction
			return service.Transaction(ctx, func(ctx context.Context) error {
				inside, err := database.Select[testCompany](ctx, service, `SELECT "handle", "name", "num_employees" FROM "test_companies" WHERE "handle" = $1`, handle)
				if err != nil {
					return err
				}
				assert.Equal(t, 1, len(inside))

				return expectedErr
			})
		})
		assert.ErrorIs(t, err, expectedErr)

		_, err = database.SelectSingle[testCompany](t.Context(), service, `SELECT "handle", "name", "num_employees" FROM "test_companies" WHERE "handle" = $1`, handle)
		assert.ErrorIs(t, err, database.ErrNoRows)
	}

	{ // Locking rows inside a transaction
		companies, err := database.NewRepository[string, testCompany](service)
		assert.NilError(t, err)

		err = service.Transaction(t.Context(), func(ctx context.Context) error {
			locked, err := companies.Lock(ctx, companyHandle)
			if err != nil {
				return err
			}
			assert.Equal(t, companyHandle, locked.Handle)

			_, err = companies.Lock(ctx, uuid.NewString())
			assert.ErrorIs(t, err, database.ErrNoRows)

			return nil
		})
		assert.NilError(t, err)
	}

	{ // Deleting a company removes its jobs
		_, err := service.Execute(t.Context(), `DELETE FROM "test_companies" WHERE "handle" = $1`, companyHandle)
		assert.NilError(t, err)

		jobs, err := database.Select[testJob](t.Context(), service, selectTestJobs)
		assert.NilError(t, err)
		assert.Equal(t, 0, len(jobs))
	}
}
