package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-assistant/internal/dto"
	"clinic-assistant/internal/models"
	"clinic-assistant/pkg/auth"

	"go.uber.org/zap"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPatientExists       = errors.New("patient already exists")
	ErrInvalidRegistration = errors.New("email and a password of at least 8 characters are required")
)

type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByEmail(ctx context.Context, email string) (*models.Patient, error)
	GetByID(ctx context.Context, id int64) (*models.Patient, error)
}

type AuthService struct {
	patientRepo PatientStore
	jwtManager  *auth.JWTManager
	logger      *zap.Logger
}

func NewAuthService(patientRepo PatientStore, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		patientRepo: patientRepo,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < 8 {
		return nil, ErrInvalidRegistration
	}

	if existing, _ := s.patientRepo.GetByEmail(ctx, email); existing != nil {
		return nil, ErrPatientExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	patient := &models.Patient{
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info("Patient registered", zap.Int64("patient_id", patient.ID))
	return s.issueTokens(patient)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil || patient == nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(req.Password, patient.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(patient)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return nil, ErrInvalidCredentials
	}

	patient, err := s.patientRepo.GetByID(ctx, claims.PatientID)
	if err != nil || patient == nil {
		return nil, ErrPatientNotFound
	}

	return s.issueTokens(patient)
}

// Profile returns the account behind an access token's patient id.
func (s *AuthService) Profile(ctx context.Context, patientID int64) (*dto.PatientResponse, error) {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil || patient == nil {
		return nil, ErrPatientNotFound
	}
	resp := patientResponse(patient)
	return &resp, nil
}

func (s *AuthService) issueTokens(patient *models.Patient) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(patient.ID, patient.Email, patient.FullName)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(patient.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		Patient:      patientResponse(patient),
	}, nil
}

func patientResponse(p *models.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
