package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	casesDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/cases"
	delegationDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/delegation"
	permissionDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/permission"
	reportDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/collection-management/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			clearTables(gormDB)
		}

		seedPermissions(gormDB)
		seedUsers(gormDB, cfg.Security.BCryptCost)
		seedCases(gormDB)
		seedAllowlist(gormDB)

		fmt.Println("seeding complete")
	},
}

func clearTables(db *gorm.DB) {
	for _, table := range []string{
		"delegations", "case_activities", "cases",
		"user_permissions", "permissions", "report_export_allowlist", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("cleared existing data")
}

func seedPermissions(db *gorm.DB) {
	names := []struct {
		name, description string
	}{
		{auth.PermAdmin, "full administrative access"},
		{auth.PermViewOwnCases, "view cases assigned to the holder"},
		{auth.PermViewDepartmentCases, "view cases of the holder's department"},
		{auth.PermViewAllCases, "view all cases"},
		{auth.PermEditOwnCases, "edit cases assigned to the holder"},
		{auth.PermEditDepartmentCases, "edit cases of the holder's department"},
		{auth.PermEditAllCases, "edit all cases"},
		{auth.PermExportOwnData, "export the holder's own data"},
		{auth.PermExportDepartmentData, "export the holder's department data"},
		{auth.PermExportAllData, "export all data"},
		{auth.PermManagePermissions, "manage the permission catalog and grants"},
		{auth.PermManageDelegations, "manage delegations on behalf of others"},
		{auth.PermManageAllowlist, "manage the report export allowlist"},
		{auth.PermTransferCases, "transfer case ownership"},
	}

	for _, p := range names {
		var count int64
		db.Model(&permissionDatamodel.Permission{}).Where("name = ?", p.name).Count(&count)
		if count > 0 {
			continue
		}
		row := permissionDatamodel.Permission{Name: p.name, Description: p.description, CreatedAt: time.Now()}
		if err := db.Create(&row).Error; err != nil {
			log.Fatalf("failed to seed permission %s: %v", p.name, err)
		}
	}
	fmt.Println("seeded permissions")
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	users := []userDatamodel.User{
		{EmployeeCode: "AD001", FullName: "Tran Quoc Admin", Email: "admin@collection.local", Role: string(auth.RoleAdministrator), Department: "CNTT", BranchCode: "6400"},
		{EmployeeCode: "DR001", FullName: "Nguyen Van Director", Email: "director@collection.local", Role: string(auth.RoleDirector), Department: "BGD", BranchCode: "6400"},
		{EmployeeCode: "DD001", FullName: "Le Thi Deputy Director", Email: "deputy.director@collection.local", Role: string(auth.RoleDeputyDirector), Department: "BGD", BranchCode: "6400"},
		{EmployeeCode: "MG001", FullName: "Pham Van Manager", Email: "manager.xltn@collection.local", Role: string(auth.RoleManager), Department: "XLTN", BranchCode: "6400"},
		{EmployeeCode: "MG002", FullName: "Hoang Thi Manager", Email: "manager.khdn@collection.local", Role: string(auth.RoleManager), Department: "KHDN", BranchCode: "6400"},
		{EmployeeCode: "DM001", FullName: "Vu Van Deputy", Email: "deputy.xltn@collection.local", Role: string(auth.RoleDeputyManager), Department: "XLTN", BranchCode: "6400"},
		{EmployeeCode: "EM001", FullName: "Dao Van Officer", Email: "officer1@collection.local", Role: string(auth.RoleEmployee), Department: "XLTN", BranchCode: "6400"},
		{EmployeeCode: "EM002", FullName: "Bui Thi Officer", Email: "officer2@collection.local", Role: string(auth.RoleEmployee), Department: "XLTN", BranchCode: "6400"},
		{EmployeeCode: "EM003", FullName: "Ngo Van Officer", Email: "officer3@collection.local", Role: string(auth.RoleEmployee), Department: "KHDN", BranchCode: "6421"},
	}

	for _, u := range users {
		var count int64
		db.Model(&userDatamodel.User{}).Where("employee_code = ?", u.EmployeeCode).Count(&count)
		if count > 0 {
			continue
		}
		u.PasswordHash = string(hash)
		u.IsActive = true
		u.CreatedAt = time.Now()
		u.UpdatedAt = time.Now()
		if err := db.Create(&u).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", u.EmployeeCode, err)
		}
	}
	fmt.Println("seeded users (password: password)")
}

func seedCases(db *gorm.DB) {
	rows := []casesDatamodel.Case{
		{CaseID: "KH2024-0001", CustomerName: "Cong ty TNHH An Phat", CustomerIDNumber: "0312456789", OutstandingAmount: 1250000000, CaseType: cases.CaseTypeInternal, Status: cases.StatusProcessing, DebtGroup: 3, AssignedEmployeeCode: "EM001", Department: "XLTN", BranchCode: "6400"},
		{CaseID: "KH2024-0002", CustomerName: "Nguyen Thanh Long", CustomerIDNumber: "079123456789", OutstandingAmount: 86000000, CaseType: cases.CaseTypeInternal, Status: cases.StatusNew, DebtGroup: 4, AssignedEmployeeCode: "EM001", Department: "XLTN", BranchCode: "6400"},
		{CaseID: "KH2024-0003", CustomerName: "Tran Thi Hoa", CustomerIDNumber: "079987654321", OutstandingAmount: 42000000, CaseType: cases.CaseTypeExternal, Status: cases.StatusCommitted, DebtGroup: 5, AssignedEmployeeCode: "EM002", Department: "XLTN", BranchCode: "6400"},
		{CaseID: "KH2024-0004", CustomerName: "Cong ty CP Binh Minh", CustomerIDNumber: "0305678123", OutstandingAmount: 3400000000, CaseType: cases.CaseTypeInternal, Status: cases.StatusLitigation, DebtGroup: 5, AssignedEmployeeCode: "EM003", Department: "KHDN", BranchCode: "6421"},
		{CaseID: "KH2024-0005", CustomerName: "Le Van Cuong", CustomerIDNumber: "079555666777", OutstandingAmount: 15500000, CaseType: cases.CaseTypeExternal, Status: cases.StatusRecovered, DebtGroup: 3, AssignedEmployeeCode: "EM002", Department: "XLTN", BranchCode: "6400"},
	}

	for _, c := range rows {
		var count int64
		db.Model(&casesDatamodel.Case{}).Where("case_id = ?", c.CaseID).Count(&count)
		if count > 0 {
			continue
		}
		c.CreatedAt = time.Now()
		c.UpdatedAt = time.Now()
		if err := db.Create(&c).Error; err != nil {
			log.Fatalf("failed to seed case %s: %v", c.CaseID, err)
		}
	}

	// one sample active delegation for local testing of revoke and sweep
	var count int64
	db.Model(&delegationDatamodel.Delegation{}).Where("case_id = ?", "KH2024-0001").Count(&count)
	if count == 0 {
		d := delegationDatamodel.Delegation{
			CaseID:         "KH2024-0001",
			DelegatedBy:    "EM001",
			DelegatedTo:    "EM002",
			DelegationDate: time.Now(),
			ExpiryDate:     time.Now().Add(7 * 24 * time.Hour),
			Status:         "active",
			Notes:          "nghi phep",
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := db.Create(&d).Error; err != nil {
			log.Fatalf("failed to seed delegation: %v", err)
		}
	}
	fmt.Println("seeded cases")
}

func seedAllowlist(db *gorm.DB) {
	var count int64
	db.Model(&reportDatamodel.ExportAllowlistEntry{}).Where("employee_code = ?", "EM001").Count(&count)
	if count > 0 {
		return
	}
	entry := reportDatamodel.ExportAllowlistEntry{
		EmployeeCode: "EM001",
		AddedBy:      "AD001",
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Fatalf("failed to seed allowlist: %v", err)
	}
	fmt.Println("seeded export allowlist")
}
