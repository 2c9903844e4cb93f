package repository

import (
	"github.com/onlypremiums/onlypremiums/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) GetActive() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Product{}).Error
}

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

func (r *planRepository) GetByID(id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) GetAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("product_id ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepository) GetActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("active = ?", true).Order("product_id ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepository) GetByProductID(productID string) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("product_id = ?", productID).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

func (r *planRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Plan{}).Error
}

func (r *planRepository) SetActive(id string, active bool) error {
	return r.db.Model(&models.Plan{}).Where("id = ?", id).Update("active", active).Error
}

// claimingInstructionRepository implements the ClaimingInstructionRepository interface
type claimingInstructionRepository struct {
	db *gorm.DB
}

// NewClaimingInstructionRepository creates a new claiming instruction repository instance
func NewClaimingInstructionRepository(db *gorm.DB) ClaimingInstructionRepository {
	return &claimingInstructionRepository{db: db}
}

func (r *claimingInstructionRepository) Upsert(instruction *models.ClaimingInstruction) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "plan_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"steps",
			"notes",
			"updated_at",
		}),
	}).Create(instruction).Error
}

func (r *claimingInstructionRepository) GetByPlanID(planID string) (*models.ClaimingInstruction, error) {
	var instruction models.ClaimingInstruction
	err := r.db.Where("plan_id = ?", planID).First(&instruction).Error
	if err != nil {
		return nil, err
	}
	return &instruction, nil
}

func (r *claimingInstructionRepository) Delete(planID string) error {
	return r.db.Where("plan_id = ?", planID).Delete(&models.ClaimingInstruction{}).Error
}
