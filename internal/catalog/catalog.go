// Package catalog bundles the fallback project catalog: the default set the
// dashboard falls back to whenever the remote store has no meaningful data.
package catalog

import (
	"encoding/json"
	"os"

	"budgetboard/internal/core"
)

// Default returns a fresh copy of the bundled catalog. Budgets here are
// recovery values only; spent always comes from the remote store.
func Default() []core.Project {
	out := make([]core.Project, len(defaults))
	copy(out, defaults)
	return out
}

// FromFile loads a catalog from a JSON seed file, falling back to the
// bundled defaults when the file is missing, unreadable, or empty. A seed
// file lets an organization swap its own project list without a rebuild.
func FromFile(path string) []core.Project {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	var projects []core.Project
	if err := json.Unmarshal(data, &projects); err != nil || len(projects) == 0 {
		return Default()
	}
	return projects
}

func baht(n int64) core.Money { return core.Money{Satang: n * 100} }

var defaults = []core.Project{
	// PJ1 series: general operations.
	{ID: 101, Name: "[PJ1-1] จัดซื้อวัสดุการจัดการเรียนการสอนทุกกลุ่มสาระ", Group: "กลุ่มบริหารวิชาการ", Owner: "ไม่ระบุ", Budget: baht(50356), Category: "งบอุดหนุน", Status: core.StatusActive},
	{ID: 102, Name: "[PJ1-2] โครงการค่าใช้จ่ายสาธารณูปโภค (ค่าไฟฟ้า ค่าอินเทอร์เน็ต)", Group: "กลุ่มบริหารทั่วไป", Owner: "ไม่ระบุ", Budget: baht(283500), Category: "งบดำเนินงาน", Status: core.StatusActive},
	{ID: 103, Name: "[PJ1-3] โครงการจัดซื้อวัสดุ อุปกรณ์ เพื่อเพิ่มประสิทธิภาพการทำงานและสนับสนุนงาน", Group: "กลุ่มบริหารงบประมาณ", Owner: "ไม่ระบุ", Budget: baht(22000), Category: "งบลงทุน", Status: core.StatusActive},
	{ID: 104, Name: "[PJ1-4] โครงการจัดทำแผนปฏิบัติการประจำปี", Group: "กลุ่มบริหารงบประมาณ", Owner: "ไม่ระบุ", Budget: baht(0), Category: "งบดำเนินงาน", Status: core.StatusClosed},
	{ID: 105, Name: "[PJ1-5] โครงการส่งเสริมระเบียบวินัยในโรงเรียน", Group: "กลุ่มกิจการนักเรียน", Owner: "ไม่ระบุ", Budget: baht(3000), Category: "งบดำเนินงาน", Status: core.StatusActive},
	{ID: 107, Name: "[PJ1-7] โครงการจัดซื้ออุปกรณ์ถ่ายภาพ", Group: "กลุ่มบริหารทั่วไป", Owner: "ไม่ระบุ", Budget: baht(6000), Category: "งบลงทุน", Status: core.StatusActive},
	{ID: 108, Name: "[PJ1-8] โครงการประชุมกรรมการสถานศึกษา", Group: "กลุ่มบริหารทั่วไป", Owner: "ไม่ระบุ", Budget: baht(5000), Category: "งบดำเนินงาน", Status: core.StatusActive},
	{ID: 110, Name: "[PJ1-10] โครงการจัดซื้อยา และเวชภัณฑ์", Group: "กลุ่มบริหารทั่วไป", Owner: "ไม่ระบุ", Budget: baht(4105), Category: "งบดำเนินงาน", Status: core.StatusActive},

	// PJ2 series: learner development.
	{ID: 201, Name: "[PJ2-1] โครงการอบรมพัฒนานักเรียนเพื่อนที่ปรึกษา YC : Youth counselor", Group: "กลุ่มกิจการนักเรียน", Owner: "ไม่ระบุ", Budget: baht(20000), Category: "งบกิจกรรมพัฒนาผู้เรียน", Status: core.StatusActive},
	{ID: 202, Name: "[PJ2-2] โครงการเข้าค่ายลูกเสือ-เนตรนารี สามัญรุ่นใหญ่", Group: "กลุ่มกิจการนักเรียน", Owner: "ไม่ระบุ", Budget: baht(22000), Category: "งบกิจกรรมพัฒนาผู้เรียน", Status: core.StatusActive},
	{ID: 203, Name: "[PJ2-3] โครงการยกระดับผลสัมฤทธิ์ทางการเรียนกลุ่มสาระวิทยาศาสตร์และเทคโนโลยี", Group: "กลุ่มบริหารวิชาการ", Owner: "ไม่ระบุ", Budget: baht(5000), Category: "งบดำเนินงาน", Status: core.StatusActive},

	// PJ3 series: central reserve.
	{ID: 301, Name: "[PJ3-1] หักงบกลาง 10%", Group: "กลุ่มบริหารงบประมาณ", Owner: "ไม่ระบุ", Budget: baht(72356), Category: "งบกลาง", Status: core.StatusActive},
}
