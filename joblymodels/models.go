package joblymodels

import (
	"github.com/lunagic/jobly/joblyservices/database"
)

// Entities lists every table in foreign key order, ready for AutoMigrate.
func Entities() []database.Entity {
	return []database.Entity{
		Company{},
		Job{},
		User{},
	}
}

type Models struct {
	Jobs      *JobModel
	Companies *CompanyModel
	Users     *UserModel
}

func New(service *database.Service, jobConfigFuncs ...JobModelConfigFunc) (Models, error) {
	jobs, err := NewJobModel(service, jobConfigFuncs...)
	if err != nil {
		return Models{}, err
	}

	companies, err := NewCompanyModel(service, jobs)
	if err != nil {
		return Models{}, err
	}

	users, err := NewUserModel(service)
	if err != nil {
		return Models{}, err
	}

	return Models{
		Jobs:      jobs,
		Companies: companies,
		Users:     users,
	}, nil
}
