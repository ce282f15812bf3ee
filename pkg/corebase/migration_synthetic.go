package corebase

import (
	"context"
	"fmt"
)

// SchemaDropper lets a synthetic migration's Down step remove the table/
// collection it created. The relational adapter implements it with
// `DROP TABLE IF EXISTS`; the document adapter's implementation drops the
// collection. Both are no-ops if the object doesn't exist.
type SchemaDropper interface {
	DropTable(ctx context.Context, name string) error
}

// SyntheticConfig drives which synthetic migrations BuildSyntheticMigrations
// emits. It is read once at startup from internal/platform/config.
type SyntheticConfig struct {
	MultiTenantEnabled bool
	MetaOrgName        string
	MetaOrgCode        string
	AdminEmail         string
	// AdminPasswordPlain is plaintext at the migration boundary; HashPassword
	// hashes it before insertion.
	AdminPasswordPlain string
	HashPassword       func(plain string) (string, error)
}

// syntheticSource is a MigrationSource over a fixed, already-built slice.
type syntheticSource struct{ migrations []Migration }

func (s syntheticSource) Migrations() ([]Migration, error) { return s.migrations, nil }

// BuildSyntheticMigrations assembles the in-code migrations that bootstrap
// tenancy, users, refresh tokens, roles/features/authorizations, the
// meta-org, and the admin user — conditionally, per cfg. ddl is only
// exercised by relational deployments (table DDL); it may be nil for a
// document deployment, where collections are implicit and Storage.Create
// is enough.
//
// System bootstrap ordering: when cfg.MultiTenantEnabled, the meta-org
// migration runs before the admin-user migration and initializes the
// process-wide SystemUserContext from the created row; in single-tenant
// mode the caller must have called InitializeSystemUserContext before Up
// runs the admin-user migration, which panics via SystemUserContext()
// otherwise — the engine fails loudly rather than initializing lazily.
func BuildSyntheticMigrations(cfg SyntheticConfig, ddl SQLExecutor, dropper SchemaDropper, storage Storage) MigrationSource {
	var migrations []Migration

	if cfg.MultiTenantEnabled {
		migrations = append(migrations, Migration{
			Name: "00000000000001_create_organizations",
			Up:   ddlUp(ddl, dropper, createOrganizationsSQL, "organizations"),
			Down: ddlDown(dropper, "organizations"),
		})
	}

	migrations = append(migrations,
		Migration{
			Name: "00000000000002_create_users",
			Up:   ddlUp(ddl, dropper, createUsersSQL, "users"),
			Down: ddlDown(dropper, "users"),
		},
		Migration{
			Name: "00000000000003_create_refresh_tokens",
			Up:   ddlUp(ddl, dropper, createRefreshTokensSQL, "refresh_tokens"),
			Down: ddlDown(dropper, "refresh_tokens"),
		},
		Migration{
			Name: "00000000000004_create_roles_features_authorizations",
			Up:   ddlUpMulti(ddl, dropper, []string{createRolesSQL, createUserRolesSQL, createFeaturesSQL, createAuthorizationsSQL}, "roles", "user_roles", "features", "authorizations"),
			Down: ddlDownMulti(dropper, "user_roles", "roles", "features", "authorizations"),
		},
	)

	if cfg.MultiTenantEnabled {
		migrations = append(migrations, Migration{
			Name: "00000000000005_bootstrap_meta_org",
			Up:   bootstrapMetaOrgUp(cfg, storage),
			Down: bootstrapMetaOrgDown(storage),
		})
	}

	migrations = append(migrations, Migration{
		Name: "00000000000006_bootstrap_admin_user",
		Up:   bootstrapAdminUserUp(cfg, storage),
		Down: bootstrapAdminUserDown(storage),
	})

	return syntheticSource{migrations: migrations}
}

func ddlUp(ddl SQLExecutor, dropper SchemaDropper, sql, table string) func(context.Context) error {
	return func(ctx context.Context) error {
		if ddl == nil {
			return nil // document backend: collection is implicit
		}
		return ddl.ExecBatch(ctx, sql)
	}
}

func ddlDown(dropper SchemaDropper, table string) func(context.Context) error {
	return func(ctx context.Context) error {
		if dropper == nil {
			return nil
		}
		return dropper.DropTable(ctx, table)
	}
}

func ddlUpMulti(ddl SQLExecutor, dropper SchemaDropper, statements []string, tables ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		if ddl == nil {
			return nil
		}
		for _, s := range statements {
			if err := ddl.ExecBatch(ctx, s); err != nil {
				return err
			}
		}
		return nil
	}
}

func ddlDownMulti(dropper SchemaDropper, tables ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		if dropper == nil {
			return nil
		}
		for _, t := range tables {
			if err := dropper.DropTable(ctx, t); err != nil {
				return err
			}
		}
		return nil
	}
}

func bootstrapMetaOrgUp(cfg SyntheticConfig, storage Storage) func(context.Context) error {
	return func(ctx context.Context) error {
		existing, err := storage.FindOne(ctx, "organizations", QueryOptions{
			Filters: map[string]Predicate{"isMetaOrg": Eq(true)},
		})
		if err != nil {
			return err
		}
		if existing != nil {
			return initSystemContextFromOrg(existing)
		}
		row, err := storage.Create(ctx, "organizations", map[string]any{
			"name":      cfg.MetaOrgName,
			"code":      cfg.MetaOrgCode,
			"isMetaOrg": true,
		})
		if err != nil {
			return err
		}
		return initSystemContextFromOrg(row)
	}
}

func initSystemContextFromOrg(row map[string]any) error {
	if IsSystemUserContextInitialized() {
		return nil
	}
	idStr, _ := row["_id"].(string)
	var metaOrgId Id
	if v, err := (RelationalIdSchema{}).Parse(idStr); err == nil {
		metaOrgId = v
	} else if v, err := (DocumentIdSchema{}).Parse(idStr); err == nil {
		metaOrgId = v
	} else {
		return fmt.Errorf("bootstrap_meta_org: could not parse org id %q", idStr)
	}
	InitializeSystemUserContext(UserContext{OrgId: metaOrgId}.WithOrg(metaOrgId))
	return nil
}

func bootstrapMetaOrgDown(storage Storage) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := storage.DeleteMany(ctx, "organizations", QueryOptions{
			Filters: map[string]Predicate{"isMetaOrg": Eq(true)},
		})
		return err
	}
}

func bootstrapAdminUserUp(cfg SyntheticConfig, storage Storage) func(context.Context) error {
	return func(ctx context.Context) error {
		if cfg.AdminEmail == "" {
			return nil
		}
		if !IsSystemUserContextInitialized() {
			panic("corebase: bootstrap_admin_user requires SystemUserContext to be initialized first")
		}
		existing, err := storage.FindOne(ctx, "users", QueryOptions{
			Filters: map[string]Predicate{"email": Eq(cfg.AdminEmail)},
		})
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		hashed := cfg.AdminPasswordPlain
		if cfg.HashPassword != nil {
			hashed, err = cfg.HashPassword(cfg.AdminPasswordPlain)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
		}
		uc := SystemUserContext()
		row := map[string]any{
			"email":        cfg.AdminEmail,
			"passwordHash": hashed,
		}
		if uc.HasOrg() {
			row["_orgId"] = uc.OrgId.String()
		}
		_, err = storage.Create(ctx, "users", row)
		return err
	}
}

func bootstrapAdminUserDown(storage Storage) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := storage.DeleteMany(ctx, "users", QueryOptions{})
		return err
	}
}

const createOrganizationsSQL = `
CREATE TABLE IF NOT EXISTS organizations (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	code TEXT NOT NULL UNIQUE,
	is_meta_org BOOLEAN NOT NULL DEFAULT FALSE
);`

const createUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	org_id BIGINT REFERENCES organizations(id),
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by BIGINT,
	updated TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_by BIGINT,
	UNIQUE (org_id, email)
);`

const createRefreshTokensSQL = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id BIGSERIAL PRIMARY KEY,
	org_id BIGINT REFERENCES organizations(id),
	user_id BIGINT NOT NULL REFERENCES users(id),
	token_hash TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ,
	created TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createRolesSQL = `
CREATE TABLE IF NOT EXISTS roles (
	id BIGSERIAL PRIMARY KEY,
	org_id BIGINT REFERENCES organizations(id),
	name TEXT NOT NULL
);`

const createUserRolesSQL = `
CREATE TABLE IF NOT EXISTS user_roles (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	role_id BIGINT NOT NULL REFERENCES roles(id)
);`

const createFeaturesSQL = `
CREATE TABLE IF NOT EXISTS features (
	id BIGSERIAL PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	description TEXT
);`

const createAuthorizationsSQL = `
CREATE TABLE IF NOT EXISTS authorizations (
	id BIGSERIAL PRIMARY KEY,
	role_id BIGINT NOT NULL REFERENCES roles(id),
	feature_id BIGINT NOT NULL REFERENCES features(id)
);`
