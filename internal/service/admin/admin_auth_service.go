// Package admin 提供管理员相关服务
package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dumeirei/lodge-booking-backend/internal/common/crypto"
	"github.com/dumeirei/lodge-booking-backend/internal/common/jwt"
	"github.com/dumeirei/lodge-booking-backend/internal/models"
	"github.com/dumeirei/lodge-booking-backend/internal/repository"
)

// AdminAuthService 管理员认证服务
type AdminAuthService struct {
	adminRepo  *repository.AdminRepository
	jwtManager *jwt.Manager
}

// NewAdminAuthService 创建管理员认证服务
func NewAdminAuthService(adminRepo *repository.AdminRepository, jwtManager *jwt.Manager) *AdminAuthService {
	return &AdminAuthService{
		adminRepo:  adminRepo,
		jwtManager: jwtManager,
	}
}

// 预定义错误
var (
	ErrAdminNotFound      = errors.New("管理员不存在")
	ErrAdminDisabled      = errors.New("管理员已禁用")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrOldPasswordInvalid = errors.New("原密码错误")
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Admin     *AdminInfo     `json:"admin"`
	TokenPair *jwt.TokenPair `json:"token"`
}

// AdminInfo 管理员信息（不含敏感字段）
type AdminInfo struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Status   int8    `json:"status"`
}

// Login 管理员登录
func (s *AdminAuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	// 检查状态
	if admin.Status != models.AdminStatusActive {
		return nil, ErrAdminDisabled
	}

	// 验证密码
	if !crypto.VerifyPassword(req.Password, admin.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	// 生成 JWT
	tokenPair, err := s.jwtManager.GenerateTokenPair(admin.ID, jwt.UserTypeAdmin, "")
	if err != nil {
		return nil, err
	}

	// 更新登录信息，失败不阻塞登录
	_ = s.adminRepo.UpdateLoginInfo(ctx, admin.ID, req.IP)

	return &LoginResponse{
		Admin:     s.toAdminInfo(admin),
		TokenPair: tokenPair,
	}, nil
}

// GetAdminInfo 获取管理员信息
func (s *AdminAuthService) GetAdminInfo(ctx context.Context, adminID int64) (*AdminInfo, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	return s.toAdminInfo(admin), nil
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Password string  `json:"password" binding:"required,min=6,max=32"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

// CreateAdmin 创建管理员
func (s *AdminAuthService) CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*AdminInfo, error) {
	exists, err := s.adminRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Status:       models.AdminStatusActive,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	return s.toAdminInfo(admin), nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=32"`
}

// ChangePassword 修改密码
func (s *AdminAuthService) ChangePassword(ctx context.Context, adminID int64, req *ChangePasswordRequest) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return err
	}

	// 验证原密码
	if !crypto.VerifyPassword(req.OldPassword, admin.PasswordHash) {
		return ErrOldPasswordInvalid
	}

	passwordHash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.adminRepo.UpdatePassword(ctx, adminID, passwordHash)
}

// RefreshToken 刷新令牌
func (s *AdminAuthService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	return s.jwtManager.RefreshToken(refreshToken)
}

// ValidateAdminToken 验证管理员令牌
func (s *AdminAuthService) ValidateAdminToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.ParseToken(token)
	if err != nil {
		return nil, err
	}

	// 验证用户类型
	if claims.UserType != jwt.UserTypeAdmin {
		return nil, errors.New("invalid user type")
	}

	// 验证管理员是否存在且状态正常
	admin, err := s.adminRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	if admin.Status != models.AdminStatusActive {
		return nil, ErrAdminDisabled
	}

	return claims, nil
}

// toAdminInfo 转换为管理员信息
func (s *AdminAuthService) toAdminInfo(admin *models.Admin) *AdminInfo {
	return &AdminInfo{
		ID:       admin.ID,
		Username: admin.Username,
		Name:     admin.Name,
		Phone:    admin.Phone,
		Email:    admin.Email,
		Status:   admin.Status,
	}
}
