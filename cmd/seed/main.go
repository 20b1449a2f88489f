// seed carga los datos iniciales: roles con sus permisos por defecto, unidades de medida,
// el usuario administrador y, opcionalmente, un catálogo de productos desde CSV (Latin-1 o UTF-8).
//
// Uso: go run ./cmd/seed [-admin-password clave] [catalogo.csv]
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dulcerialilis/lilis-api/internal/application/dto"
	"github.com/dulcerialilis/lilis-api/internal/application/listing"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
	"github.com/dulcerialilis/lilis-api/internal/domain/entity"
	"github.com/dulcerialilis/lilis-api/internal/infrastructure/postgres"
	"github.com/dulcerialilis/lilis-api/pkg/config"
	"github.com/dulcerialilis/lilis-api/pkg/logger"
)

var defaultUnits = []dto.UnitRequest{
	{Code: "UN", Name: "Unidad", Type: entity.UnitTypeUnit},
	{Code: "CJ", Name: "Caja", Type: entity.UnitTypeUnit},
	{Code: "KG", Name: "Kilogramo", Type: entity.UnitTypeWeight},
	{Code: "GR", Name: "Gramo", Type: entity.UnitTypeWeight},
	{Code: "LT", Name: "Litro", Type: entity.UnitTypeVolume},
}

func main() {
	adminUser := flag.String("admin-user", "admin", "username del administrador")
	adminEmail := flag.String("admin-email", "admin@dulcerialilis.cl", "email del administrador")
	adminPassword := flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "contraseña del administrador")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	productRepo := postgres.NewProductRepository(pool)

	// Roles
	// los roles existentes conservan los permisos editados desde la API
	for _, name := range access.RoleNames() {
		if r, err := roleRepo.GetByName(ctx, name); err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("leer rol")
		} else if r != nil {
			continue
		}
		role := &entity.Role{ID: uuid.New().String(), Name: name, Permissions: access.DefaultPermissions(name)}
		if err := roleRepo.Upsert(ctx, role); err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("crear rol")
		}
		log.Info().Str("role", name).Msg("rol creado")
	}

	// Unidades
	catalogUC := usecase.NewCatalogUseCase(usecase.CatalogDeps{Categories: categoryRepo, Units: unitRepo, Products: productRepo})
	for _, u := range defaultUnits {
		if _, err := catalogUC.CreateUnit(ctx, u); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			log.Fatal().Err(err).Str("unit", u.Code).Msg("crear unidad")
		}
	}

	// Administrador
	if err := seedAdmin(ctx, userRepo, roleRepo, *adminUser, *adminEmail, *adminPassword, log); err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}

	// Catálogo opcional
	if path := flag.Arg(0); path != "" {
		productUC := usecase.NewProductUseCase(usecase.ProductDeps{
			Products: productRepo, Categories: categoryRepo, Units: unitRepo,
			Alerts: postgres.NewStockAlertRepository(pool), Tx: postgres.NewTxRunner(pool), Log: log,
		})
		if err := importCatalog(ctx, path, catalogUC, productUC, log); err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("importar catálogo")
		}
	}
	log.Info().Msg("seed completado")
}

func seedAdmin(ctx context.Context, users *postgres.UserRepo, roles *postgres.RoleRepo, username, email, password string, log *logger.Logger) error {
	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info().Str("username", username).Msg("administrador ya existe")
		return nil
	}
	if password == "" {
		return errors.New("indique -admin-password o SEED_ADMIN_PASSWORD")
	}
	role, err := roles.GetByName(ctx, access.RoleAdmin)
	if err != nil {
		return err
	}
	if role == nil {
		return errors.New("rol ADMIN no encontrado")
	}
	hash, err := usecase.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Administrador",
		RoleID:       &role.ID,
		Status:       entity.UserStatusActive,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("administrador creado")
	return nil
}

func categoryKey(name string) string {
	return strings.ToLower(listing.Fold(name))
}

func importCatalog(ctx context.Context, path string, catalog *usecase.CatalogUseCase, products *usecase.ProductUseCase, log *logger.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rows, err := parseCatalog(raw)
	if err != nil {
		return err
	}

	categories := map[string]string{} // nombre plegado → id
	existing, err := catalog.ListCategories(ctx, false)
	if err != nil {
		return err
	}
	for _, c := range existing {
		categories[categoryKey(c.Name)] = c.ID
	}
	units := map[string]string{}
	unitList, err := catalog.ListUnits(ctx)
	if err != nil {
		return err
	}
	for _, u := range unitList {
		units[u.Code] = u.ID
	}

	created, skipped := 0, 0
	for _, r := range rows {
		catID, ok := categories[categoryKey(r.Category)]
		if !ok {
			c, err := catalog.CreateCategory(ctx, dto.NamedRequest{Name: r.Category})
			if err != nil {
				return err
			}
			catID = c.ID
			categories[categoryKey(r.Category)] = catID
		}
		unitID, ok := units[r.Unit]
		if !ok {
			log.Warn().Int("line", r.Line).Str("unit", r.Unit).Msg("unidad desconocida, fila omitida")
			skipped++
			continue
		}
		_, err := products.Create(ctx, dto.CreateProductRequest{
			SKU:            r.SKU,
			Name:           r.Name,
			CategoryID:     catID,
			PurchaseUnitID: unitID,
			SaleUnitID:     unitID,
			StandardCost:   r.Cost,
			SalePrice:      r.Price,
			StockMin:       r.StockMin,
			StockMax:       r.StockMax,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		case err != nil:
			return err
		default:
			created++
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("catálogo importado")
	return nil
}
