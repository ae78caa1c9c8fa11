package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ekram2004/task-manager-saas-collaborative/logging"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
	"github.com/Ekram2004/task-manager-saas-collaborative/utils"
)

// OrganizationService owns the bidirectional User<->Organization relationship.
// Every mutation touches two collections (the organization's member list and
// the user's organization/role fields), so each one runs inside a session
// transaction when the deployment supports it and falls back to sequential
// writes otherwise. GetMyOrganization repairs the inconsistency a crashed
// sequential sequence can leave behind.
//
// Membership convention: the owner is always present in Members, and every
// eligibility check (task assignment, member listing, removal) works off the
// Members list alone.
type OrganizationService struct {
	Client                  *mongo.Client
	OrganizationsCollection *mongo.Collection
	UsersCollection         *mongo.Collection
	Notifier                *NotificationService
}

func NewOrganizationService(client *mongo.Client, organizationsCollection, usersCollection *mongo.Collection, notifier *NotificationService) *OrganizationService {
	return &OrganizationService{
		Client:                  client,
		OrganizationsCollection: organizationsCollection,
		UsersCollection:         usersCollection,
		Notifier:                notifier,
	}
}

// withTransaction runs fn inside a MongoDB session transaction. Standalone
// deployments reject transactions (IllegalOperation, code 20); in that case
// the writes run sequentially and self-healing on read covers a crash between
// them.
func (s *OrganizationService) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.Client == nil {
		return fn(ctx)
	}

	session, err := s.Client.StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && isTransactionUnsupported(err) {
		logging.Logger.Warnf("Event ID: TXN_UNSUPPORTED, Description: Transactions not supported by deployment, falling back to sequential writes: %v", err)
		return fn(ctx)
	}
	return err
}

func isTransactionUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return false
}

// CreateOrganization creates an organization owned by the requester and binds
// the requester to it as owner. The owner is auto-added to the member list.
func (s *OrganizationService) CreateOrganization(ctx context.Context, requester models.User, name string) (*models.Organization, *models.AppError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewAppError(models.ErrValidation, "Organization name is required")
	}
	if len(name) > models.MaxOrganizationNameLength {
		return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Organization name can not be more than %d characters", models.MaxOrganizationNameLength))
	}

	if requester.Organization != nil {
		return nil, models.NewAppError(models.ErrAlreadyMember, "You are already part of an organization")
	}

	// Precondition check only; the unique name index is what actually
	// rejects the loser of a concurrent create.
	var existing models.Organization
	if err := s.OrganizationsCollection.FindOne(ctx, bson.M{"name": name}).Decode(&existing); err == nil {
		return nil, models.NewAppError(models.ErrDuplicateName, "Organization with this name already exists")
	}

	organization := &models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Owner:     requester.ID,
		Members:   []primitive.ObjectID{requester.ID},
		CreatedAt: time.Now(),
	}

	err := s.withTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.OrganizationsCollection.InsertOne(ctx, organization); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return models.NewAppError(models.ErrDuplicateName, "Organization with this name already exists")
			}
			return models.InternalError("Failed to create organization", err)
		}

		_, err := s.UsersCollection.UpdateOne(ctx,
			bson.M{"_id": requester.ID},
			bson.M{"$set": bson.M{"organization": organization.ID, "role": models.RoleOwner}},
		)
		if err != nil {
			return models.InternalError("Failed to update user organization", err)
		}
		return nil
	})
	if err != nil {
		return nil, models.AsAppError(err)
	}

	logging.Logger.Infof("Event ID: ORGANIZATION_CREATED, Description: Organization '%s' created by %s", organization.Name, requester.Email)
	return organization, nil
}

// GetMyOrganization returns the requester's organization with owner and
// members expanded. If the requester references the organization but is
// missing from its member list (a crashed two-write sequence), the member
// list is repaired here.
func (s *OrganizationService) GetMyOrganization(ctx context.Context, requester models.User) (*models.OrganizationView, *models.AppError) {
	organization, appErr := s.organizationForRequester(ctx, requester)
	if appErr != nil {
		return nil, appErr
	}

	if !organization.HasMember(requester.ID) {
		logging.Logger.Warnf("Event ID: MEMBERSHIP_RECONCILED, Description: User %s references organization %s but was missing from its member list, repairing", requester.ID.Hex(), organization.ID.Hex())
		_, err := s.OrganizationsCollection.UpdateOne(ctx,
			bson.M{"_id": organization.ID},
			bson.M{"$addToSet": bson.M{"members": requester.ID}},
		)
		if err != nil {
			return nil, models.InternalError("Failed to reconcile membership", err)
		}
		organization.Members = append(organization.Members, requester.ID)
	}

	return s.expandOrganization(ctx, organization)
}

// GetMyMembers returns the expanded member list of the requester's
// organization.
func (s *OrganizationService) GetMyMembers(ctx context.Context, requester models.User) ([]models.UserRef, *models.AppError) {
	organization, appErr := s.organizationForRequester(ctx, requester)
	if appErr != nil {
		return nil, appErr
	}

	refs, err := s.expandUserRefs(ctx, organization.Members)
	if err != nil {
		return nil, models.InternalError("Failed to fetch organization members", err)
	}
	return refs, nil
}

// AddMember invites the user with the given email into the organization.
// Only the owner may do this, and the target must not belong to any
// organization, this one included.
func (s *OrganizationService) AddMember(ctx context.Context, requester models.User, orgID, email string) (*models.UserRef, *models.AppError) {
	organization, appErr := s.organizationByID(ctx, orgID)
	if appErr != nil {
		return nil, appErr
	}

	if organization.Owner != requester.ID {
		return nil, models.NewAppError(models.ErrForbidden, "Only the organization owner can manage members")
	}

	var target models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&target); err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "User with that email not found")
	}

	if target.Organization != nil {
		return nil, models.NewAppError(models.ErrAlreadyMember, "User is already part of an organization")
	}

	err := s.withTransaction(ctx, func(ctx context.Context) error {
		// $addToSet keeps a concurrent double-add from duplicating the
		// member entry.
		_, err := s.OrganizationsCollection.UpdateOne(ctx,
			bson.M{"_id": organization.ID},
			bson.M{"$addToSet": bson.M{"members": target.ID}},
		)
		if err != nil {
			return models.InternalError("Failed to add member to organization", err)
		}

		_, err = s.UsersCollection.UpdateOne(ctx,
			bson.M{"_id": target.ID},
			bson.M{"$set": bson.M{"organization": organization.ID, "role": models.RoleMember}},
		)
		if err != nil {
			return models.InternalError("Failed to update member organization", err)
		}
		return nil
	})
	if err != nil {
		return nil, models.AsAppError(err)
	}

	s.Notifier.Publish(NotificationEvent{
		Type:           EventMemberAdded,
		OrganizationID: organization.ID.Hex(),
		UserID:         target.ID.Hex(),
		Message:        fmt.Sprintf("%s joined organization %s", target.Email, organization.Name),
	})

	subject := fmt.Sprintf("You have been added to %s", organization.Name)
	body := fmt.Sprintf("Hi %s,<br><br>%s added you to the organization <b>%s</b>.", target.Name, requester.Name, organization.Name)
	if err := utils.SendEmail(target.Email, subject, body); err != nil {
		logging.Logger.Warnf("Event ID: INVITE_EMAIL_FAILED, Description: Failed to send invite email to %s: %v", target.Email, err)
	}

	logging.Logger.Infof("Event ID: MEMBER_ADDED, Description: User %s added to organization '%s'", target.Email, organization.Name)
	ref := target.Ref()
	return &ref, nil
}

// RemoveMember removes a member from the organization and unbinds them. The
// owner can never be removed; there is no ownership-transfer path. Tasks
// already assigned to the removed member keep their reference (no cascade).
func (s *OrganizationService) RemoveMember(ctx context.Context, requester models.User, orgID, memberID string) *models.AppError {
	organization, appErr := s.organizationByID(ctx, orgID)
	if appErr != nil {
		return appErr
	}

	if organization.Owner != requester.ID {
		return models.NewAppError(models.ErrForbidden, "Only the organization owner can manage members")
	}

	targetID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.NewAppError(models.ErrNotFound, "Member not found in organization")
	}

	if targetID == organization.Owner {
		return models.NewAppError(models.ErrInvalidOperation, "The organization owner cannot be removed")
	}

	if !organization.HasMember(targetID) {
		return models.NewAppError(models.ErrNotFound, "Member not found in organization")
	}

	txnErr := s.withTransaction(ctx, func(ctx context.Context) error {
		_, err := s.OrganizationsCollection.UpdateOne(ctx,
			bson.M{"_id": organization.ID},
			bson.M{"$pull": bson.M{"members": targetID}},
		)
		if err != nil {
			return models.InternalError("Failed to remove member from organization", err)
		}

		_, err = s.UsersCollection.UpdateOne(ctx,
			bson.M{"_id": targetID},
			bson.M{
				"$set":   bson.M{"role": models.RoleUser},
				"$unset": bson.M{"organization": ""},
			},
		)
		if err != nil {
			return models.InternalError("Failed to update removed member", err)
		}
		return nil
	})
	if txnErr != nil {
		return models.AsAppError(txnErr)
	}

	s.Notifier.Publish(NotificationEvent{
		Type:           EventMemberRemoved,
		OrganizationID: organization.ID.Hex(),
		UserID:         targetID.Hex(),
		Message:        fmt.Sprintf("A member was removed from organization %s", organization.Name),
	})

	logging.Logger.Infof("Event ID: MEMBER_REMOVED, Description: User %s removed from organization '%s'", targetID.Hex(), organization.Name)
	return nil
}

// IsMember reports whether the user appears in the organization's member
// list. The task service calls this before accepting an assignee.
func (s *OrganizationService) IsMember(ctx context.Context, orgID, userID primitive.ObjectID) (bool, error) {
	var organization models.Organization
	if err := s.OrganizationsCollection.FindOne(ctx, bson.M{"_id": orgID}).Decode(&organization); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return organization.HasMember(userID), nil
}

func (s *OrganizationService) organizationForRequester(ctx context.Context, requester models.User) (*models.Organization, *models.AppError) {
	if requester.Organization == nil {
		return nil, models.NewAppError(models.ErrNotFound, "User is not part of any organization")
	}

	var organization models.Organization
	if err := s.OrganizationsCollection.FindOne(ctx, bson.M{"_id": *requester.Organization}).Decode(&organization); err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Organization not found")
	}
	return &organization, nil
}

func (s *OrganizationService) organizationByID(ctx context.Context, orgID string) (*models.Organization, *models.AppError) {
	id, err := primitive.ObjectIDFromHex(orgID)
	if err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Organization not found")
	}

	var organization models.Organization
	if err := s.OrganizationsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&organization); err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Organization not found")
	}
	return &organization, nil
}

func (s *OrganizationService) expandOrganization(ctx context.Context, organization *models.Organization) (*models.OrganizationView, *models.AppError) {
	refs, err := s.expandUserRefs(ctx, append([]primitive.ObjectID{organization.Owner}, organization.Members...))
	if err != nil {
		return nil, models.InternalError("Failed to fetch organization members", err)
	}

	byID := make(map[primitive.ObjectID]models.UserRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	view := &models.OrganizationView{
		ID:        organization.ID,
		Name:      organization.Name,
		Owner:     byID[organization.Owner],
		Members:   make([]models.UserRef, 0, len(organization.Members)),
		CreatedAt: organization.CreatedAt,
	}
	for _, memberID := range organization.Members {
		if ref, ok := byID[memberID]; ok {
			view.Members = append(view.Members, ref)
		}
	}
	return view, nil
}

// expandUserRefs resolves user ids to display snapshots, deduplicating and
// skipping ids that no longer resolve.
func (s *OrganizationService) expandUserRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserRef, error) {
	if len(ids) == 0 {
		return []models.UserRef{}, nil
	}

	cursor, err := s.UsersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var refs []models.UserRef
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
