// Package access holds the role predicates consulted before every mutating
// operation. Both the JSON API and the server-rendered pages call into it.
package access

import "github.com/projectdesk/projectdesk/internal/models"

// Actor is the acting user. A nil *Actor is an anonymous request.
type Actor struct {
	ID   uint
	Role models.Role
}

func IsAuthenticated(actor *Actor) bool {
	return actor != nil && actor.ID != 0
}

func IsAdministrator(actor *Actor) bool {
	return IsAuthenticated(actor) && actor.Role == models.RoleAdministrator
}

func IsCollaboratorOrAdministrator(actor *Actor) bool {
	return IsAuthenticated(actor) && (actor.Role == models.RoleCollaborator || actor.Role == models.RoleAdministrator)
}

func CanCreateProject(actor *Actor) bool {
	return IsCollaboratorOrAdministrator(actor)
}

func CanEditProject(actor *Actor, project *models.Project) bool {
	if !IsCollaboratorOrAdministrator(actor) {
		return false
	}
	return IsAdministrator(actor) || project.CreatedBy(actor.ID)
}

// CanDeleteProject ignores ownership: only administrators delete projects.
func CanDeleteProject(actor *Actor) bool {
	return IsAdministrator(actor)
}

func CanManageCollaborators(actor *Actor, project *models.Project) bool {
	return CanEditProject(actor, project)
}

// IsProjectMember expects project.Memberships to be loaded.
func IsProjectMember(actor *Actor, project *models.Project) bool {
	if !IsAuthenticated(actor) {
		return false
	}
	return project.CreatedBy(actor.ID) || project.HasCollaborator(actor.ID)
}

// CanWriteInProject covers creating and editing tasks and creating comments.
func CanWriteInProject(actor *Actor, project *models.Project) bool {
	if IsAdministrator(actor) {
		return true
	}
	return IsCollaboratorOrAdministrator(actor) && IsProjectMember(actor, project)
}

func CanDeleteTask(actor *Actor, project *models.Project) bool {
	if IsAdministrator(actor) {
		return true
	}
	return IsCollaboratorOrAdministrator(actor) && project.CreatedBy(actor.ID)
}

func CanEditComment(actor *Actor, project *models.Project, comment *models.Comment) bool {
	if !IsAuthenticated(actor) {
		return false
	}
	if IsAdministrator(actor) {
		return true
	}
	if comment.AuthorID == nil || *comment.AuthorID != actor.ID {
		return false
	}
	return CanWriteInProject(actor, project)
}

func CanDeleteComment(actor *Actor, project *models.Project, comment *models.Comment) bool {
	return CanEditComment(actor, project, comment)
}

func CanManageUsers(actor *Actor) bool {
	return IsAdministrator(actor)
}
