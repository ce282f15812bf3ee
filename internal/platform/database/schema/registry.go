// Package schema whitelists every relational table's columns. Rather than
// one hand-written struct per entity, it holds a single registry of
// relational.TableSchema values keyed by table name: one reusable type,
// one column list per table, checked against every generated SQL
// statement before interpolation.
package schema

import "github.com/corebase/corebase/pkg/corebase/storage/relational"

// Table names. corebase.Storage's `table` argument is always one of these.
const (
	Organizations    = "organizations"
	Users            = "users"
	Roles            = "roles"
	UserRoles        = "user_roles"
	Features         = "features"
	Authorizations   = "authorizations"
	Categories       = "categories"
	Products         = "products"
	Tags             = "tags"
	ProductTags      = "product_tags"
	TestItems        = "testitems"
)

// Registry lists every table's whitelisted wire columns (excluding "_id",
// which relational.TableSchema always allows implicitly). Passed straight
// into relational.NewAdapter.
var Registry = map[string]relational.TableSchema{
	Organizations: {Table: Organizations, Columns: []string{"name", "code", "isMetaOrg"}},
	Users: {Table: Users, Columns: []string{
		"_orgId", "email", "passwordHash", "_created", "_createdBy", "_updated", "_updatedBy",
	}},
	Roles: {Table: Roles, Columns: []string{"_orgId", "name"}},
	UserRoles: {Table: UserRoles, Columns: []string{"userId", "roleId"}},
	Features: {Table: Features, Columns: []string{"slug", "description"}},
	Authorizations: {Table: Authorizations, Columns: []string{"roleId", "featureId"}},
	Categories: {Table: Categories, Columns: []string{
		"_orgId", "name", "_created", "_createdBy", "_updated", "_updatedBy",
	}},
	Products: {Table: Products, Columns: []string{
		"_orgId", "name", "description", "priceCents", "categoryId",
		"_created", "_createdBy", "_updated", "_updatedBy",
	}},
	Tags: {Table: Tags, Columns: []string{"_orgId", "label"}},
	ProductTags: {Table: ProductTags, Columns: []string{"productId", "tagId"}},
	TestItems: {Table: TestItems, Columns: []string{
		"_orgId", "label", "secret", "_created", "_createdBy", "_updated", "_updatedBy",
	}},
}
