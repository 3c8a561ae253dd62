package jobly

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"github.com/lunagic/poseidon/poseidon"
)

type route struct {
	Name         string
	Method       string
	Path         string
	Admin        bool
	RequestBody  reflect.Type
	ResponseBody reflect.Type
	Handler      func(w http.ResponseWriter, r *http.Request) error
}

func (route route) Pattern() string {
	return route.Method + " " + route.Path
}

type JobResponse struct {
	Job joblymodels.Job `json:"job"`
}

type JobsResponse struct {
	Jobs []joblymodels.Job `json:"jobs"`
}

type CompanyResponse struct {
	Company joblymodels.Company `json:"company"`
}

type CompanyWithJobsResponse struct {
	Company joblymodels.CompanyWithJobs `json:"company"`
}

type CompaniesResponse struct {
	Companies []joblymodels.Company `json:"companies"`
}

type UserResponse struct {
	User joblymodels.User `json:"user"`
}

type UsersResponse struct {
	Users []joblymodels.User `json:"users"`
}

// The update requests describe the accepted PATCH bodies. Handlers decode
// into a sqlbuild.Payload so that only the keys sent are written.
type JobUpdateRequest struct {
	Title  *string  `json:"title,omitempty"`
	Salary *int64   `json:"salary,omitempty"`
	Equity *float64 `json:"equity,omitempty"`
}

type CompanyUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	NumEmployees *int64  `json:"numEmployees,omitempty"`
	LogoURL      *string `json:"logoUrl,omitempty"`
}

type UserUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	IsAdmin   *bool   `json:"isAdmin,omitempty"`
}

type DeletedResponse struct {
	Deleted string `json:"deleted"`
}

func (app *App) routes() []route {
	return []route{
		{
			Name:         "JobCreate",
			Method:       http.MethodPost,
			Path:         "/jobs",
			Admin:        true,
			RequestBody:  reflect.TypeFor[joblymodels.NewJob](),
			ResponseBody: reflect.TypeFor[JobResponse](),
			Handler:      app.jobCreate,
		},
		{
			Name:         "JobList",
			Method:       http.MethodGet,
			Path:         "/jobs",
			ResponseBody: reflect.TypeFor[JobsResponse](),
			Handler:      app.jobList,
		},
		{
			Name:         "JobGet",
			Method:       http.MethodGet,
			Path:         "/jobs/{id}",
			ResponseBody: reflect.TypeFor[JobResponse](),
			Handler:      app.jobGet,
		},
		{
			Name:         "JobUpdate",
			Method:       http.MethodPatch,
			Path:         "/jobs/{id}",
			Admin:        true,
			RequestBody:  reflect.TypeFor[JobUpdateRequest](),
			ResponseBody: reflect.TypeFor[JobResponse](),
			Handler:      app.jobUpdate,
		},
		{
			Name:         "JobRemove",
			Method:       http.MethodDelete,
			Path:         "/jobs/{id}",
			Admin:        true,
			ResponseBody: reflect.TypeFor[DeletedResponse](),
			Handler:      app.jobRemove,
		},
		{
			Name:         "CompanyCreate",
			Method:       http.MethodPost,
			Path:         "/companies",
			Admin:        true,
			RequestBody:  reflect.TypeFor[joblymodels.NewCompany](),
			ResponseBody: reflect.TypeFor[CompanyResponse](),
			Handler:      app.companyCreate,
		},
		{
			Name:         "CompanyList",
			Method:       http.MethodGet,
			Path:         "/companies",
			ResponseBody: reflect.TypeFor[CompaniesResponse](),
			Handler:      app.companyList,
		},
		{
			Name:         "CompanyGet",
			Method:       http.MethodGet,
			Path:         "/companies/{handle}",
			ResponseBody: reflect.TypeFor[CompanyWithJobsResponse](),
			Handler:      app.companyGet,
		},
		{
			Name:         "CompanyUpdate",
			Method:       http.MethodPatch,
			Path:         "/companies/{handle}",
			Admin:        true,
			RequestBody:  reflect.TypeFor[CompanyUpdateRequest](),
			ResponseBody: reflect.TypeFor[CompanyResponse](),
			Handler:      app.companyUpdate,
		},
		{
			Name:         "CompanyRemove",
			Method:       http.MethodDelete,
			Path:         "/companies/{handle}",
			Admin:        true,
			ResponseBody: reflect.TypeFor[DeletedResponse](),
			Handler:      app.companyRemove,
		},
		{
			Name:         "UserCreate",
			Method:       http.MethodPost,
			Path:         "/users",
			Admin:        true,
			RequestBody:  reflect.TypeFor[joblymodels.NewUser](),
			ResponseBody: reflect.TypeFor[UserResponse](),
			Handler:      app.userCreate,
		},
		{
			Name:         "UserList",
			Method:       http.MethodGet,
			Path:         "/users",
			Admin:        true,
			ResponseBody: reflect.TypeFor[UsersResponse](),
			Handler:      app.userList,
		},
		{
			Name:         "UserGet",
			Method:       http.MethodGet,
			Path:         "/users/{username}",
			Admin:        true,
			ResponseBody: reflect.TypeFor[UserResponse](),
			Handler:      app.userGet,
		},
		{
			Name:         "UserUpdate",
			Method:       http.MethodPatch,
			Path:         "/users/{username}",
			Admin:        true,
			RequestBody:  reflect.TypeFor[UserUpdateRequest](),
			ResponseBody: reflect.TypeFor[UserResponse](),
			Handler:      app.userUpdate,
		},
		{
			Name:         "UserRemove",
			Method:       http.MethodDelete,
			Path:         "/users/{username}",
			Admin:        true,
			ResponseBody: reflect.TypeFor[DeletedResponse](),
			Handler:      app.userRemove,
		},
	}
}

// decodeBody reads a single JSON value into target, refusing unknown fields.
func decodeBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrBadRequest{Err: errors.New("empty body")}
		}

		return ErrBadRequest{Err: err}
	}

	if decoder.More() {
		return ErrBadRequest{Err: errors.New("unexpected data after the JSON value")}
	}

	return nil
}

func decodePayload(r *http.Request) (*sqlbuild.Payload, error) {
	payload := sqlbuild.NewPayload()
	if err := decodeBody(r, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func jobID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, joblymodels.ErrNotFound
	}

	return id, nil
}

func (app *App) jobCreate(w http.ResponseWriter, r *http.Request) error {
	newJob := joblymodels.NewJob{}
	if err := decodeBody(r, &newJob); err != nil {
		return err
	}

	job, err := app.models.Jobs.Create(r.Context(), newJob)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusCreated, JobResponse{Job: job})

	return nil
}

func (app *App) jobList(w http.ResponseWriter, r *http.Request) error {
	filters, err := sqlbuild.ParseSearchFilters(r.URL.Query())
	if err != nil {
		return err
	}

	jobs, err := app.models.Jobs.FindAll(r.Context(), filters)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, JobsResponse{Jobs: jobs})

	return nil
}

func (app *App) jobGet(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}

	job, err := app.models.Jobs.Get(r.Context(), id)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, JobResponse{Job: job})

	return nil
}

func (app *App) jobUpdate(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}

	payload, err := decodePayload(r)
	if err != nil {
		return err
	}

	job, err := app.models.Jobs.Update(r.Context(), id, payload)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, JobResponse{Job: job})

	return nil
}

func (app *App) jobRemove(w http.ResponseWriter, r *http.Request) error {
	id, err := jobID(r)
	if err != nil {
		return err
	}

	if err := app.models.Jobs.Remove(r.Context(), id); err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, DeletedResponse{Deleted: strconv.FormatInt(id, 10)})

	return nil
}

func (app *App) companyCreate(w http.ResponseWriter, r *http.Request) error {
	newCompany := joblymodels.NewCompany{}
	if err := decodeBody(r, &newCompany); err != nil {
		return err
	}

	company, err := app.models.Companies.Create(r.Context(), newCompany)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusCreated, CompanyResponse{Company: company})

	return nil
}

func (app *App) companyList(w http.ResponseWriter, r *http.Request) error {
	companies, err := app.models.Companies.FindAll(r.Context())
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, CompaniesResponse{Companies: companies})

	return nil
}

func (app *App) companyGet(w http.ResponseWriter, r *http.Request) error {
	company, err := app.models.Companies.Get(r.Context(), r.PathValue("handle"))
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, CompanyWithJobsResponse{Company: company})

	return nil
}

func (app *App) companyUpdate(w http.ResponseWriter, r *http.Request) error {
	payload, err := decodePayload(r)
	if err != nil {
		return err
	}

	company, err := app.models.Companies.Update(r.Context(), r.PathValue("handle"), payload)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, CompanyResponse{Company: company})

	return nil
}

func (app *App) companyRemove(w http.ResponseWriter, r *http.Request) error {
	handle := r.PathValue("handle")
	if err := app.models.Companies.Remove(r.Context(), handle); err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, DeletedResponse{Deleted: handle})

	return nil
}

func (app *App) userCreate(w http.ResponseWriter, r *http.Request) error {
	newUser := joblymodels.NewUser{}
	if err := decodeBody(r, &newUser); err != nil {
		return err
	}

	user, err := app.models.Users.Create(r.Context(), newUser)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusCreated, UserResponse{User: user})

	return nil
}

func (app *App) userList(w http.ResponseWriter, r *http.Request) error {
	users, err := app.models.Users.FindAll(r.Context())
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, UsersResponse{Users: users})

	return nil
}

func (app *App) userGet(w http.ResponseWriter, r *http.Request) error {
	user, err := app.models.Users.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, UserResponse{User: user})

	return nil
}

func (app *App) userUpdate(w http.ResponseWriter, r *http.Request) error {
	payload, err := decodePayload(r)
	if err != nil {
		return err
	}

	user, err := app.models.Users.Update(r.Context(), r.PathValue("username"), payload)
	if err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, UserResponse{User: user})

	return nil
}

func (app *App) userRemove(w http.ResponseWriter, r *http.Request) error {
	username := r.PathValue("username")
	if err := app.models.Users.Remove(r.Context(), username); err != nil {
		return err
	}

	poseidon.RespondJSON(w, http.StatusOK, DeletedResponse{Deleted: username})

	return nil
}
