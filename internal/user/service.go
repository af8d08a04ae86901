package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/auth"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/mailer"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type RepositoryAPI interface {
	ListMembers(ctx context.Context, scope tenant.Scope) ([]MemberRow, error)
	GetMember(ctx context.Context, scope tenant.Scope, id int64) (*MemberRow, error)
	MemberByUser(ctx context.Context, scope tenant.Scope, userID int64) (*MemberRow, error)
	FindUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	// AddMember inserts u first when it has no id, then the membership.
	AddMember(ctx context.Context, scope tenant.Scope, u *userDatamodel.User, role tenant.Role) (int64, error)
	UpdateRole(ctx context.Context, scope tenant.Scope, id int64, role tenant.Role) error
	RemoveMember(ctx context.Context, scope tenant.Scope, id int64) error
	CompanyName(ctx context.Context, companyID int64) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, scope tenant.Scope, e audit.Entry)
}

type CredentialSender interface {
	SendCredentials(ctx context.Context, c mailer.Credentials) error
}

type Service struct {
	repo       RepositoryAPI
	audit      AuditRecorder
	mail       CredentialSender
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, auditor AuditRecorder, mail CredentialSender, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		audit:      auditor,
		mail:       mail,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Me(ctx context.Context, scope tenant.Scope) (*Profile, error) {
	row, err := s.repo.MemberByUser(ctx, scope, scope.UserID)
	if err != nil {
		return nil, s.mapError(err, "failed to load profile")
	}
	return &Profile{
		ID:        row.UserID,
		Email:     row.Email,
		Name:      row.Name,
		CompanyID: scope.CompanyID,
		Role:      tenant.Role(row.Role),
		JoinedAt:  row.CreatedAt,
	}, nil
}

func (s *Service) ListMembers(ctx context.Context, scope tenant.Scope) ([]*Member, error) {
	rows, err := s.repo.ListMembers(ctx, scope)
	if err != nil {
		return nil, s.mapError(err, "failed to list members")
	}
	out := make([]*Member, 0, len(rows))
	for i := range rows {
		out = append(out, MemberFromRow(&rows[i]))
	}
	return out, nil
}

// AddMember gives an existing account a membership, or creates the account
// with a generated password and mails the credentials.
func (s *Service) AddMember(ctx context.Context, scope tenant.Scope, dto AddMemberDTO) (*Member, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	role, _ := tenant.ParseRole(dto.Role)

	u, err := s.repo.FindUserByEmail(ctx, dto.Email)
	var password string
	switch {
	case errors.Is(err, ErrUserNotFound):
		password, err = auth.GeneratePassword()
		if err != nil {
			return nil, internal.NewInternalError("failed to generate password", err)
		}
		hash, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u = &userDatamodel.User{Email: dto.Email, Name: dto.Name, PasswordHash: hash, IsActive: true}
	case err != nil:
		return nil, s.mapError(err, "failed to look up user")
	default:
		if _, err := s.repo.MemberByUser(ctx, scope, u.ID); err == nil {
			return nil, internal.ErrAlreadyMember
		}
	}

	id, err := s.repo.AddMember(ctx, scope, u, role)
	if err != nil {
		return nil, s.mapError(err, "failed to add member")
	}

	s.logger.Info("member added", "company_id", scope.CompanyID, "user_id", u.ID, "role", role, "new_account", password != "")
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionMemberAdd,
		EntityType: audit.EntityMembership,
		EntityID:   id,
		Metadata:   map[string]any{"userId": u.ID, "email": u.Email, "role": string(role)},
	})

	if password != "" {
		s.sendCredentials(ctx, scope, u, password)
	}

	row, err := s.repo.GetMember(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load member")
	}
	return MemberFromRow(row), nil
}

func (s *Service) sendCredentials(ctx context.Context, scope tenant.Scope, u *userDatamodel.User, password string) {
	companyName, err := s.repo.CompanyName(ctx, scope.CompanyID)
	if err != nil {
		s.logger.Warn("failed to load company name for mail", "company_id", scope.CompanyID, "error", err)
	}
	if err := s.mail.SendCredentials(ctx, mailer.Credentials{
		Name:        u.Name,
		Email:       u.Email,
		Password:    password,
		CompanyName: companyName,
	}); err != nil {
		s.logger.Error("failed to send credentials", "user_id", u.ID, "error", err)
	}
}

// UpdateRole changes another member's role. Admins cannot change their own.
func (s *Service) UpdateRole(ctx context.Context, scope tenant.Scope, id int64, dto UpdateMemberDTO) (*Member, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	role, _ := tenant.ParseRole(dto.Role)

	row, err := s.repo.GetMember(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load member")
	}
	if row.UserID == scope.UserID {
		return nil, internal.ErrSelfModification
	}

	if row.Role != string(role) {
		if err := s.repo.UpdateRole(ctx, scope, id, role); err != nil {
			return nil, s.mapError(err, "failed to update member")
		}
		s.audit.Record(ctx, scope, audit.Entry{
			Action:     audit.ActionMemberUpdate,
			EntityType: audit.EntityMembership,
			EntityID:   id,
			Metadata:   map[string]any{"userId": row.UserID, "from": row.Role, "to": string(role)},
		})
		row.Role = string(role)
	}
	return MemberFromRow(row), nil
}

// RemoveMember ends another member's membership. The account itself stays.
func (s *Service) RemoveMember(ctx context.Context, scope tenant.Scope, id int64) error {
	row, err := s.repo.GetMember(ctx, scope, id)
	if err != nil {
		return s.mapError(err, "failed to load member")
	}
	if row.UserID == scope.UserID {
		return internal.ErrSelfModification
	}

	if err := s.repo.RemoveMember(ctx, scope, id); err != nil {
		return s.mapError(err, "failed to remove member")
	}

	s.logger.Info("member removed", "company_id", scope.CompanyID, "user_id", row.UserID)
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionMemberRemove,
		EntityType: audit.EntityMembership,
		EntityID:   id,
		Metadata:   map[string]any{"userId": row.UserID, "email": row.Email, "role": row.Role},
	})
	return nil
}

func (s *Service) mapError(err error, msg string) error {
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		return internal.ErrMemberNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return internal.ErrAlreadyMember
	}
	s.logger.Error(msg, "error", err)
	return internal.NewInternalError(msg, err)
}
