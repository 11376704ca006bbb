package person

import (
	"context"
	"fmt"
	"strings"

	"go-org/internal/errs"
	"go-org/internal/features/group"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var rosterColumns = []string{"ID", "First Name", "Last Name", "Rank", "Clearance", "Group"}

// ExportRoster renders the subtree membership rooted at groupID as an xlsx
// workbook: one row per person, with the full hierarchy path of their
// direct group.
func (s *PersonServiceImpl) ExportRoster(ctx context.Context, groupID primitive.ObjectID) ([]byte, string, error) {
	root, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	if root == nil {
		return nil, "", errs.NotFound("group", groupID.Hex())
	}

	groups, err := group.Subtree(ctx, s.groupRepo, root)
	if err != nil {
		return nil, "", err
	}

	pathByPerson := make(map[string]string)
	var memberIDs []string
	for _, g := range groups {
		path := strings.Join(g.Hierarchy, "/")
		for _, m := range g.Members {
			pathByPerson[m] = path
			memberIDs = append(memberIDs, m)
		}
	}

	persons, err := s.repo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range rosterColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, p := range persons {
		values := []interface{}{p.ID, p.FirstName, p.LastName, p.Rank, p.Clearance, pathByPerson[p.ID]}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("roster_%s.xlsx", strings.ReplaceAll(root.Name, " ", "_"))
	return buf.Bytes(), filename, nil
}
