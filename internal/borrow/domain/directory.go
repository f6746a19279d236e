package domain

// UserDirectory resolves user roles from the user service. The borrow
// service needs it for the on-behalf-of flow: an admin may file a borrow
// request for a student, never for another admin.
type UserDirectory interface {
	RoleOf(userID uint) (string, error)
}
