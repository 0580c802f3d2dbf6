package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"feedback:create",
		"feedback:view-own",
		"history:view-own",
		"rubric:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
