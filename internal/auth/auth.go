package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ouyangqi017/Chubang/internal/config"
	"github.com/ouyangqi017/Chubang/internal/logger"
	"github.com/ouyangqi017/Chubang/internal/model"
	"github.com/ouyangqi017/Chubang/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

const issuer = "chubang"

// Claims 登录令牌载荷
type Claims struct {
	Username   string     `json:"username"`
	Role       model.Role `json:"role"`
	Department string     `json:"department,omitempty"`
	jwt.StandardClaims
}

// Session 令牌对应的会话
func (c *Claims) Session() model.Session {
	return model.Session{Username: c.Username, Role: c.Role, Department: c.Department}
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Session   model.Session `json:"session"`
}

// Service 账号校验与令牌签发
type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService 创建认证服务
func NewService(st *store.Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		store:  st,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// EnsureSecret 读取已保存的签名密钥，不存在时生成 32 字节随机密钥并保存
func EnsureSecret(st *store.Store) (string, error) {
	secret, err := st.GetConfig(store.KeyJWTSecret)
	if err == nil && secret != "" {
		return secret, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("read jwt secret: %w", err)
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	secret = hex.EncodeToString(b)
	if err := st.SetConfig(store.KeyJWTSecret, secret); err != nil {
		return "", fmt.Errorf("save jwt secret: %w", err)
	}
	return secret, nil
}

// HashPassword bcrypt 哈希
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword 校验密码
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SeedUsers 写入配置中的账号，已存在的跳过，返回新建数量
func (s *Service) SeedUsers(seeds []config.UserSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		if _, err := s.store.GetUser(seed.Username); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return created, fmt.Errorf("lookup user %s: %w", seed.Username, err)
		}

		hash, err := HashPassword(seed.Password)
		if err != nil {
			return created, err
		}
		err = s.store.CreateUser(&store.User{
			Username:     seed.Username,
			PasswordHash: hash,
			Role:         string(seed.Role),
			Department:   seed.Department,
		})
		if err != nil {
			return created, err
		}
		created++
		logger.WithComponent("auth").WithField("user", seed.Username).Info("已创建账号")
	}
	return created, nil
}

// Login 校验用户名密码并签发令牌
func (s *Service) Login(username, password string) (*LoginResult, error) {
	u, err := s.store.GetUser(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	sess := model.Session{Username: u.Username, Role: model.Role(u.Role), Department: u.Department}
	if !sess.Role.Valid() {
		return nil, fmt.Errorf("user %s has invalid role %q", u.Username, u.Role)
	}

	token, expiresAt, err := s.IssueToken(sess)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Session: sess}, nil
}

// ChangePassword 校验旧密码后更新
func (s *Service) ChangePassword(username, oldPassword, newPassword string) error {
	u, err := s.store.GetUser(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !CheckPassword(u.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(username, hash)
}

// IssueToken 为会话签发 HS256 令牌
func (s *Service) IssueToken(sess model.Session) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Username:   sess.Username,
		Role:       sess.Role,
		Department: sess.Department,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   sess.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseToken 校验令牌并返回会话
func (s *Service) ParseToken(token string) (model.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Issuer != issuer || !claims.Role.Valid() {
		return model.Session{}, ErrInvalidToken
	}
	if claims.Role == model.RoleDepartment && claims.Department == "" {
		return model.Session{}, ErrInvalidToken
	}
	return claims.Session(), nil
}
