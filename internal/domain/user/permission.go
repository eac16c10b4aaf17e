package user

type Permission string

const (
	// Users
	PermissionUserCreate       Permission = "user.create"
	PermissionUserList         Permission = "user.list"
	PermissionUserUpdate       Permission = "user.update"
	PermissionUserDelete       Permission = "user.delete"
	PermissionUserListManagers Permission = "user.list_managers"
	PermissionUserListLeads    Permission = "user.list_team_leads"
	PermissionUserListStaff    Permission = "user.list_employees"

	// Teams
	PermissionTeamCreate  Permission = "team.create"
	PermissionTeamUpdate  Permission = "team.update"
	PermissionTeamDelete  Permission = "team.delete"
	PermissionTeamMembers Permission = "team.manage_members"

	// Tasks
	PermissionTaskCreate  Permission = "task.create"
	PermissionTaskDelete  Permission = "task.delete"
	PermissionTaskAssign  Permission = "task.view_assigned"
	PermissionTaskSummary Permission = "task.summary"

	// Forms
	PermissionFormManage Permission = "form.manage"

	// Attendance
	PermissionAttendanceTeamView   Permission = "attendance.view_team"
	PermissionAttendanceForceClose Permission = "attendance.force_clock_out"
	PermissionBreakSettingsManage  Permission = "break_settings.manage"

	// Worksheets
	PermissionWorksheetVerify  Permission = "worksheet.verify"
	PermissionWorksheetApprove Permission = "worksheet.approve"
	PermissionWorksheetReject  Permission = "worksheet.reject"

	// Reports
	PermissionReportView     Permission = "report.view"
	PermissionReportOvertime Permission = "report.view_overtime"
	PermissionReportTeams    Permission = "report.view_team_performance"
)

// RolePermissions is the role matrix loaded into the policy engine. Roles do
// not inherit: verify belongs to Team Leads but not Managers, approve to
// Managers but not Team Leads.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionUserCreate,
		PermissionUserList,
		PermissionUserUpdate,
		PermissionUserDelete,
		PermissionUserListManagers,
		PermissionUserListLeads,
		PermissionUserListStaff,
		PermissionTeamCreate,
		PermissionTeamUpdate,
		PermissionTeamDelete,
		PermissionTeamMembers,
		PermissionTaskCreate,
		PermissionTaskDelete,
		PermissionTaskAssign,
		PermissionTaskSummary,
		PermissionFormManage,
		PermissionAttendanceTeamView,
		PermissionAttendanceForceClose,
		PermissionBreakSettingsManage,
		PermissionWorksheetVerify,
		PermissionWorksheetApprove,
		PermissionWorksheetReject,
		PermissionReportView,
		PermissionReportOvertime,
		PermissionReportTeams,
	},
	RoleManager: {
		PermissionUserCreate,
		PermissionUserList,
		PermissionUserUpdate,
		PermissionUserListLeads,
		PermissionUserListStaff,
		PermissionTeamCreate,
		PermissionTeamUpdate,
		PermissionTeamMembers,
		PermissionTaskCreate,
		PermissionTaskDelete,
		PermissionTaskAssign,
		PermissionTaskSummary,
		PermissionFormManage,
		PermissionAttendanceTeamView,
		PermissionBreakSettingsManage,
		PermissionWorksheetApprove,
		PermissionWorksheetReject,
		PermissionReportView,
		PermissionReportOvertime,
		PermissionReportTeams,
	},
	RoleTeamLead: {
		PermissionUserCreate,
		PermissionUserList,
		PermissionUserUpdate,
		PermissionUserListStaff,
		PermissionTeamMembers,
		PermissionTaskCreate,
		PermissionTaskDelete,
		PermissionTaskAssign,
		PermissionTaskSummary,
		PermissionAttendanceTeamView,
		PermissionWorksheetVerify,
		PermissionWorksheetReject,
		PermissionReportView,
	},
	RoleAssociate: {
		PermissionUserList,
	},
}
