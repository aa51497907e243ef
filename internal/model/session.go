package model

// Role 用户角色
type Role string

const (
	RoleAdmin      Role = "admin"      // 管理员：全部维度，可导入导出
	RoleDepartment Role = "department" // 部门用户：部门锁定，精简看板
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDepartment
}

// Session 登录会话
type Session struct {
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"` // 部门用户必填
}

// IsAdmin 是否管理员
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// DeptConstraint 会话附带的部门约束，管理员为空
func (s Session) DeptConstraint() string {
	if s.Role == RoleDepartment {
		return s.Department
	}
	return ""
}
