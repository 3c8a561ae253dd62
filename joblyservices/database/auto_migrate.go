package database

import (
	"context"
)

// AutoMigrate creates the tables (and their indexes) of entities that do not
// exist yet, in the order given so foreign key targets can come first. It
// returns the number of statements executed.
func (service *Service) AutoMigrate(ctx context.Context, entities []Entity) (changesExecuted int, err error) {
	statements := []string{}
	for _, entity := range entities {
		table := entity.TableStructure()
		if err := table.hydrateColumns(service.driver, entity); err != nil {
			return 0, err
		}

		exists, err := service.driver.tableExists(ctx, service, table.Name)
		if err != nil {
			return 0, err
		}

		if exists {
			continue
		}

		tableStatements, err := service.driver.renderTableCreate(table)
		if err != nil {
			return 0, err
		}

		statements = append(statements, tableStatements...)
	}

	for i, statement := range statements {
		if _, err := service.Execute(ctx, statement); err != nil {
			return i, err
		}
	}

	return len(statements), nil
}
