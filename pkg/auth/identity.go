package auth

const RoleAdmin = "admin"

// Identity - аутентифицированный пользователь, извлеченный из JWT
type Identity struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// DisplayName возвращает имя автора в формате "Имя Фамилия"
func (id *Identity) DisplayName() string {
	return id.FirstName + " " + id.LastName
}

// IsAdmin - политика авторизации: nil (анонимный запрос) никогда не является администратором
func IsAdmin(id *Identity) bool {
	return id != nil && id.Role == RoleAdmin
}

// Visible - политика видимости записи: флаг записи (isAvailable / isVisible)
// либо права администратора
func Visible(flag bool, admin bool) bool {
	return flag || admin
}

// IsOwner проверяет, что запись с email автора принадлежит вызывающему
func IsOwner(id *Identity, authorEmail string) bool {
	return id != nil && id.Email != "" && id.Email == authorEmail
}
