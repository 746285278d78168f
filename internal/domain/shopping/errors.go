package shopping

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrListNotFound          = errors.New("shopping list not found")
	ErrItemNotFound          = errors.New("shopping item not found")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrListArchived          = errors.New("shopping list is archived")
	ErrCollaboratorExists    = errors.New("collaborator already on list")
	ErrCollaboratorNotFound  = errors.New("collaborator not found")
	ErrCannotRemoveOwner     = errors.New("cannot remove list owner")
	ErrInvalidRole           = errors.New("invalid collaborator role")
)
