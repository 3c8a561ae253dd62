package joblymodels

import (
	"context"

	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
)

type User struct {
	Username  string `db:"username,primaryKey" json:"username"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	IsAdmin   bool   `db:"is_admin,default=FALSE" json:"isAdmin"`
}

func (e User) TableStructure() database.Table {
	return database.Table{
		Name: "users",
	}
}

var userColumns = sqlbuild.ColumnMap{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

var userSchema = schema{
	fields: map[string]fieldRule{
		"username":  {Kind: fieldString, MinLength: 1},
		"firstName": {Kind: fieldString, MinLength: 1},
		"lastName":  {Kind: fieldString, MinLength: 1},
		"email":     {Kind: fieldEmail},
		"isAdmin":   {Kind: fieldBoolean},
	},
	required: []string{"username", "firstName", "lastName", "email"},
}

var userUpdateSchema = userSchema.forUpdate("username")

type NewUser struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

func (newUser NewUser) Payload() *sqlbuild.Payload {
	return sqlbuild.NewPayload().
		Set("username", newUser.Username).
		Set("firstName", newUser.FirstName).
		Set("lastName", newUser.LastName).
		Set("email", newUser.Email).
		Set("isAdmin", newUser.IsAdmin)
}

func NewUserModel(service *database.Service) (*UserModel, error) {
	users, err := database.NewRepository[string, User](service)
	if err != nil {
		return nil, err
	}

	return &UserModel{
		users: users,
	}, nil
}

type UserModel struct {
	users database.Repository[string, User]
}

func (model *UserModel) Create(ctx context.Context, newUser NewUser) (User, error) {
	payload := newUser.Payload()
	if err := userSchema.validate(payload); err != nil {
		return User{}, err
	}

	if _, err := model.users.Insert(ctx, payload, userColumns); err != nil {
		return User{}, translateError("users", err)
	}

	return model.Get(ctx, newUser.Username)
}

func (model *UserModel) FindAll(ctx context.Context) ([]User, error) {
	return model.users.SelectMultiple(ctx, sqlbuild.Predicate{}, "username")
}

func (model *UserModel) Get(ctx context.Context, username string) (User, error) {
	user, err := model.users.SelectSingle(ctx, username)
	if err != nil {
		return User{}, translateError("users", err)
	}

	return user, nil
}

func (model *UserModel) Update(ctx context.Context, username string, payload *sqlbuild.Payload) (User, error) {
	if payload.Len() == 0 {
		return User{}, sqlbuild.ErrEmptyPayload
	}

	if err := userUpdateSchema.validate(payload); err != nil {
		return User{}, err
	}

	user, err := model.users.Update(ctx, username, payload, userColumns)
	if err != nil {
		return User{}, translateError("users", err)
	}

	return user, nil
}

func (model *UserModel) Remove(ctx context.Context, username string) error {
	if err := model.users.Delete(ctx, username); err != nil {
		return translateError("users", err)
	}

	return nil
}
