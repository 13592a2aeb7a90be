package rbac

// Default policy. Anonymous visitors can play, browse and practice without
// any of these; owner-only routes check identity separately.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:create",
		"quiz:edit-own",
		"quiz:delete-own",
	},
	"teacher": {
		"quiz:create",
		"quiz:edit-own",
		"quiz:delete-own",
		"users:list",
	},
	"admin": {
		"*", // everything, including scores:reset and the -any variants
	},
}
