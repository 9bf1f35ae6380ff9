package repositories

import (
	"context"

	"idle-resource-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// departmentRepository implements DepartmentRepository interface
type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

// Create creates a new department
func (r *departmentRepository) Create(ctx context.Context, dept *models.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

// GetByID gets a department by ID
func (r *departmentRepository) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).First(&dept, id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// List lists departments ordered by name
func (r *departmentRepository) List(ctx context.Context, activeOnly bool) ([]*models.Department, error) {
	var depts []*models.Department
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&depts).Error
	return depts, err
}

// Update updates a department
func (r *departmentRepository) Update(ctx context.Context, dept *models.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

// ExistsByName checks name uniqueness, ignoring excludeID
func (r *departmentRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Department{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// employeeRepository implements EmployeeRepository interface
type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create creates a new employee
func (r *employeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

// GetByID gets an employee by ID with department
func (r *employeeRepository) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var emp models.Employee
	err := r.db.WithContext(ctx).Preload("Department").First(&emp, id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// GetByIDs loads several employees at once, keyed by ID
func (r *employeeRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Employee, error) {
	out := make(map[uint]*models.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var emps []*models.Employee
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&emps).Error; err != nil {
		return nil, err
	}
	for _, e := range emps {
		out[e.ID] = e
	}
	return out, nil
}

// GetByNumber gets an employee by employee number
func (r *employeeRepository) GetByNumber(ctx context.Context, number string) (*models.Employee, error) {
	var emp models.Employee
	err := r.db.WithContext(ctx).Where("employee_number = ?", number).First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// List lists employees with pagination
func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]*models.Employee, int64, error) {
	var emps []*models.Employee
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.DepartmentID != nil {
			db = db.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Employee{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Department").
		Order("employee_number ASC").
		Offset(offset).
		Limit(limit).
		Find(&emps).Error

	return emps, total, err
}

// Update updates an employee
func (r *employeeRepository) Update(ctx context.Context, emp *models.Employee) error {
	return r.db.WithContext(ctx).Omit("Department").Save(emp).Error
}

// ExistsByNumber checks employee number uniqueness, ignoring excludeID
func (r *employeeRepository) ExistsByNumber(ctx context.Context, number string, excludeID uint) (bool, error) {
	return r.exists(ctx, "employee_number", number, excludeID)
}

// ExistsByEmail checks email uniqueness, ignoring excludeID
func (r *employeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *employeeRepository) exists(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Employee{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
