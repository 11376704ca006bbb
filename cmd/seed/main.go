package main

import (
	"context"

	"go-org/internal/config"
	"go-org/internal/database"
	"go-org/internal/features/group"
	"go-org/internal/features/person"
	"go-org/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Seed builds a sample organization through the real services so every
// denormalized field goes through the same code paths as production writes.
func Seed(
	lc fx.Lifecycle,
	groupService group.GroupService,
	personService person.PersonService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding sample organization...")

				seedCtx := context.Background()

				mkGroup := func(name string) primitive.ObjectID {
					g := &group.Group{Name: name}
					if err := groupService.CreateGroup(seedCtx, g); err != nil {
						logger.Fatal("seed group failed", zap.String("name", name), zap.Error(err))
					}
					return g.ID
				}

				root := mkGroup("Headquarters")
				a := mkGroup("Operations")
				b := mkGroup("Intelligence")
				c := mkGroup("Logistics")
				a1 := mkGroup("Field Team")
				b1 := mkGroup("Analysis")
				b2 := mkGroup("Signals")

				adopt := func(parent primitive.ObjectID, children ...primitive.ObjectID) {
					if err := groupService.ChildrenAdoption(seedCtx, parent, children); err != nil {
						logger.Fatal("seed adoption failed", zap.Error(err))
					}
				}
				adopt(root, a, b, c)
				adopt(a, a1)
				adopt(b, b1, b2)

				assign := func(id, first, last string, target primitive.ObjectID) {
					p := &person.Person{ID: id, FirstName: first, LastName: last}
					if _, err := personService.CreateUser(seedCtx, p); err != nil {
						logger.Fatal("seed person failed", zap.String("personId", id), zap.Error(err))
					}
					if err := personService.Assign(seedCtx, id, target); err != nil {
						logger.Fatal("seed assign failed", zap.String("personId", id), zap.Error(err))
					}
				}

				assign("1000001", "Avi", "Ron", a)
				assign("1000002", "Eli", "Kopter", a)
				assign("1000003", "Mazal", "Tov", b)
				assign("1000004", "Tiki", "Poor", a1)
				assign("1000005", "Bar", "Nir", b1)
				assign("1000006", "Yafa", "Lula", b2)
				assign("1000007", "Dani", "Din", b2)
				assign("1000008", "Uzi", "Mahir", c)

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,

			group.NewGroupRepository,
			person.NewPersonRepository,

			func(db *database.MongodbDB) database.TxRunner { return db },
			func(r person.PersonRepository) group.MemberDetacher { return r },

			group.NewGroupService,
			person.NewPersonService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
