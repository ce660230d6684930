// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

//go:build integration

package account_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/store"
	"github.com/vaultshare/vaultshare/internal/workspace"
)

// mustJoin walks a user through the invite flow into a workspace.
func mustJoin(ctx context.Context, ws *account.Workspace, user *account.User) *account.WorkspaceUser {
	invite, err := env.Workspaces.InviteUser(ctx, ws.ID, ws.AdminID, user.Email)
	Expect(err).NotTo(HaveOccurred())
	member, err := env.Workspaces.AcceptInvite(ctx, invite.ID, user.ID)
	Expect(err).NotTo(HaveOccurred())
	return member
}

var _ = Describe("Workspaces", func() {
	var admin, bob *account.User

	BeforeEach(func() {
		truncateAll(env.ctx, env.pool)
		admin = mustRegister(env.ctx, "admin", "admin@example.com", "admin-pass")
		bob = mustRegister(env.ctx, "bob", "bob@example.com", "bob-pass")
	})

	Describe("CreateWorkspace", func() {
		It("provisions the workspace, admin membership, and root folder", func() {
			ws, err := env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "research", 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.AdminID).To(Equal(admin.ID))
			Expect(ws.TotalMemory).To(Equal(100.0))
			Expect(ws.MaxUsers).To(Equal(10))
			Expect(ws.MemoryUsed).To(BeZero())

			members, err := env.Workspaces.Members(env.ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))
			Expect(members[0].UserID).To(Equal(admin.ID))
			Expect(members[0].Role).To(Equal(account.RoleAdmin))

			tree, err := env.Workspaces.FolderTree(env.ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			roots := tree.Roots()
			Expect(roots).To(HaveLen(1))
			Expect(roots[0].Name).To(Equal("research"))
			Expect(roots[0].IsRoot).To(BeTrue())
			Expect(roots[0].UserID).To(BeNil())
		})

		It("falls back to default limits", func() {
			ws, err := env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "defaults", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.TotalMemory).To(Equal(account.DefaultWorkspaceMemory))
			Expect(ws.MaxUsers).To(Equal(account.DefaultMaxUsers))
		})

		It("rejects an unknown admin", func() {
			_, err := env.Workspaces.CreateWorkspace(env.ctx, "no-such-user", "orphan", 10, 5)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("Invites", func() {
		var ws *account.Workspace

		BeforeEach(func() {
			var err error
			ws, err = env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "shared", 100, 5)
			Expect(err).NotTo(HaveOccurred())
		})

		It("runs the full invite-accept flow", func() {
			invite, err := env.Workspaces.InviteUser(env.ctx, ws.ID, admin.ID, bob.Email)
			Expect(err).NotTo(HaveOccurred())
			Expect(invite.Status).To(Equal(account.InviteStatusPending))

			// The invitee has an account, so an alert is raised for it.
			alerts, err := env.Workspaces.Alerts(env.ctx, bob.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].AlertType).To(Equal(account.AlertTypeInvite))

			pending, err := env.Workspaces.Invites(env.ctx, bob.Email)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))

			member, err := env.Workspaces.AcceptInvite(env.ctx, invite.ID, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(member.WorkspaceID).To(Equal(ws.ID))
			Expect(member.Role).To(Equal(account.RoleUser))

			// Accepting resolves the invite and alerts the inviter.
			pending, err = env.Workspaces.Invites(env.ctx, bob.Email)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(BeEmpty())

			adminAlerts, err := env.Workspaces.Alerts(env.ctx, admin.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(adminAlerts).To(HaveLen(1))
		})

		It("rejects a resolved invite a second time", func() {
			invite, err := env.Workspaces.InviteUser(env.ctx, ws.ID, admin.ID, bob.Email)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.Workspaces.AcceptInvite(env.ctx, invite.ID, bob.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Workspaces.AcceptInvite(env.ctx, invite.ID, bob.ID)
			Expect(err).To(MatchError(workspace.ErrInviteResolved))
		})

		It("rejects accepting someone else's invite", func() {
			carol := mustRegister(env.ctx, "carol", "carol@example.com", "carol-pass")
			invite, err := env.Workspaces.InviteUser(env.ctx, ws.ID, admin.ID, bob.Email)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Workspaces.AcceptInvite(env.ctx, invite.ID, carol.ID)
			Expect(err).To(MatchError(workspace.ErrInviteMismatch))
		})

		It("declines without creating a membership", func() {
			invite, err := env.Workspaces.InviteUser(env.ctx, ws.ID, admin.ID, bob.Email)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Workspaces.DeclineInvite(env.ctx, invite.ID, bob.ID)).To(Succeed())

			members, err := env.Workspaces.Members(env.ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))

			stored, err := env.Repos.Invites.Find(env.ctx, store.Filter{"id": invite.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(account.InviteStatusDeclined))
		})

		It("refuses invites from non-admins", func() {
			mustJoin(env.ctx, ws, bob)
			carol := mustRegister(env.ctx, "carol", "carol@example.com", "carol-pass")

			_, err := env.Workspaces.InviteUser(env.ctx, ws.ID, bob.ID, carol.Email)
			Expect(err).To(MatchError(workspace.ErrNotAdmin))
		})

		It("refuses invites to a full workspace", func() {
			small, err := env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "tiny", 10, 1)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Workspaces.InviteUser(env.ctx, small.ID, admin.ID, bob.Email)
			Expect(err).To(MatchError(workspace.ErrWorkspaceFull))
		})
	})

	Describe("Quota allocation", func() {
		var ws *account.Workspace

		BeforeEach(func() {
			var err error
			ws, err = env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "quota", 10, 5)
			Expect(err).NotTo(HaveOccurred())
			mustJoin(env.ctx, ws, bob)
		})

		It("sets the member and global allocation together", func() {
			Expect(env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, bob.ID, 4)).To(Succeed())

			member, err := env.Repos.Members.Find(env.ctx, store.Filter{
				"workspace_id": ws.ID,
				"user_id":      bob.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(member.MemoryAllocated).To(Equal(4.0))

			user, err := env.Repos.Users.Find(env.ctx, store.Filter{"id": bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.MemoryAllocated).To(Equal(4.0))
		})

		It("moves the global allocation by the delta on reallocation", func() {
			Expect(env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, bob.ID, 4)).To(Succeed())
			Expect(env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, bob.ID, 2)).To(Succeed())

			user, err := env.Repos.Users.Find(env.ctx, store.Filter{"id": bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.MemoryAllocated).To(Equal(2.0))
		})

		It("rejects allocations beyond the workspace total", func() {
			Expect(env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, admin.ID, 8)).To(Succeed())

			err := env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, bob.ID, 3)
			Expect(err).To(MatchError(workspace.ErrQuotaExceeded))
		})

		It("rejects non-admin requesters", func() {
			err := env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, bob.ID, bob.ID, 1)
			Expect(err).To(MatchError(workspace.ErrNotAdmin))
		})

		It("rejects allocations to non-members", func() {
			carol := mustRegister(env.ctx, "carol", "carol@example.com", "carol-pass")
			err := env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, carol.ID, 1)
			Expect(err).To(MatchError(workspace.ErrNotMember))
		})
	})

	Describe("File registration", func() {
		var ws *account.Workspace

		BeforeEach(func() {
			var err error
			ws, err = env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "files", 10, 5)
			Expect(err).NotTo(HaveOccurred())
			mustJoin(env.ctx, ws, bob)
			Expect(env.Workspaces.AllocateMemberQuota(env.ctx, ws.ID, admin.ID, bob.ID, 5)).To(Succeed())
		})

		register := func(size float64) *account.File {
			file, err := env.Workspaces.RegisterFile(env.ctx, workspace.FileParams{
				WorkspaceID: ws.ID,
				UserID:      bob.ID,
				Name:        "data.csv",
				Path:        "/files/data.csv",
				Size:        size,
			})
			Expect(err).NotTo(HaveOccurred())
			return file
		}

		It("bumps workspace and owner usage", func() {
			register(2)

			stored, err := env.Repos.Workspaces.Find(env.ctx, store.Filter{"id": ws.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.MemoryUsed).To(Equal(2.0))

			owner, err := env.Repos.Users.Find(env.ctx, store.Filter{"id": bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(owner.MemoryUsed).To(Equal(2.0))
		})

		It("raises a usage alert at 80% of the allocation", func() {
			register(4)

			alerts, err := env.Workspaces.Alerts(env.ctx, bob.ID, true)
			Expect(err).NotTo(HaveOccurred())

			types := alertTypes(alerts)
			Expect(types).To(ContainElement(account.AlertTypeMemoryUsage))
			Expect(types).NotTo(ContainElement(account.AlertTypeMemoryExceeded))
		})

		It("raises an exceeded alert past the allocation but still writes", func() {
			file := register(6)
			Expect(file.ID).NotTo(BeEmpty())

			alerts, err := env.Workspaces.Alerts(env.ctx, bob.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(alertTypes(alerts)).To(ContainElement(account.AlertTypeMemoryExceeded))
		})

		It("alerts the admin when the workspace itself is over capacity", func() {
			register(12)

			alerts, err := env.Workspaces.Alerts(env.ctx, admin.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(alertTypes(alerts)).To(ContainElement(account.AlertTypeMemoryExceeded))
		})

		It("returns usage on removal", func() {
			file := register(3)

			Expect(env.Workspaces.RemoveFile(env.ctx, file.ID, bob.ID)).To(Succeed())

			stored, err := env.Repos.Workspaces.Find(env.ctx, store.Filter{"id": ws.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.MemoryUsed).To(BeZero())

			owner, err := env.Repos.Users.Find(env.ctx, store.Filter{"id": bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(owner.MemoryUsed).To(BeZero())
		})

		It("lets only the owner or admin remove a file", func() {
			carol := mustRegister(env.ctx, "carol", "carol@example.com", "carol-pass")
			file := register(1)

			err := env.Workspaces.RemoveFile(env.ctx, file.ID, carol.ID)
			Expect(err).To(MatchError(workspace.ErrNotAdmin))

			Expect(env.Workspaces.RemoveFile(env.ctx, file.ID, admin.ID)).To(Succeed())
		})

		It("rejects registrations from non-members", func() {
			carol := mustRegister(env.ctx, "carol", "carol@example.com", "carol-pass")
			_, err := env.Workspaces.RegisterFile(env.ctx, workspace.FileParams{
				WorkspaceID: ws.ID,
				UserID:      carol.ID,
				Name:        "sneaky.txt",
				Path:        "/files/sneaky.txt",
				Size:        1,
			})
			Expect(err).To(MatchError(workspace.ErrNotMember))
		})
	})

	Describe("Folder tree", func() {
		var ws *account.Workspace
		var root *account.Folder

		BeforeEach(func() {
			var err error
			ws, err = env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "tree", 10, 5)
			Expect(err).NotTo(HaveOccurred())

			tree, err := env.Workspaces.FolderTree(env.ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			root = tree.Roots()[0]
		})

		It("nests folders under the root", func() {
			docs, err := env.Workspaces.CreateFolder(env.ctx, ws.ID, root.ID, "docs", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.Workspaces.CreateFolder(env.ctx, ws.ID, docs.ID, "reports", nil)
			Expect(err).NotTo(HaveOccurred())

			tree, err := env.Workspaces.FolderTree(env.ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())

			children := tree.Children(root.ID)
			Expect(children).To(HaveLen(1))
			Expect(children[0].Name).To(Equal("docs"))
			Expect(tree.Children(docs.ID)).To(HaveLen(1))

			path, err := tree.Path(tree.Children(docs.ID)[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(HaveLen(3))
			Expect(path[0].ID).To(Equal(root.ID))
		})

		It("creates personal folders for members only", func() {
			mustJoin(env.ctx, ws, bob)
			folder, err := env.Workspaces.CreateFolder(env.ctx, ws.ID, root.ID, "bob-stuff", &bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(folder.UserID).NotTo(BeNil())
			Expect(*folder.UserID).To(Equal(bob.ID))

			carol := mustRegister(env.ctx, "carol", "carol@example.com", "carol-pass")
			_, err = env.Workspaces.CreateFolder(env.ctx, ws.ID, root.ID, "carol-stuff", &carol.ID)
			Expect(err).To(MatchError(workspace.ErrNotMember))
		})

		It("reparents folders but never under a descendant", func() {
			a, err := env.Workspaces.CreateFolder(env.ctx, ws.ID, root.ID, "a", nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := env.Workspaces.CreateFolder(env.ctx, ws.ID, a.ID, "b", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Workspaces.MoveFolder(env.ctx, ws.ID, b.ID, root.ID)).To(Succeed())

			tree, err := env.Workspaces.FolderTree(env.ctx, ws.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Children(root.ID)).To(HaveLen(2))

			Expect(env.Workspaces.MoveFolder(env.ctx, ws.ID, b.ID, a.ID)).To(Succeed())
			err = env.Workspaces.MoveFolder(env.ctx, ws.ID, a.ID, b.ID)
			Expect(err).To(HaveOccurred())
		})

		It("keeps the root pinned", func() {
			a, err := env.Workspaces.CreateFolder(env.ctx, ws.ID, root.ID, "a", nil)
			Expect(err).NotTo(HaveOccurred())

			err = env.Workspaces.MoveFolder(env.ctx, ws.ID, root.ID, a.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Alerts", func() {
		It("marks only the owner's alerts read", func() {
			ws, err := env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "alerts", 10, 5)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.Workspaces.InviteUser(env.ctx, ws.ID, admin.ID, bob.Email)
			Expect(err).NotTo(HaveOccurred())

			alerts, err := env.Workspaces.Alerts(env.ctx, bob.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(alerts).To(HaveLen(1))

			marked, err := env.Workspaces.MarkAlertRead(env.ctx, alerts[0].ID, admin.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(marked).To(BeFalse())

			marked, err = env.Workspaces.MarkAlertRead(env.ctx, alerts[0].ID, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(marked).To(BeTrue())

			unread, err := env.Workspaces.Alerts(env.ctx, bob.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(unread).To(BeEmpty())

			all, err := env.Workspaces.Alerts(env.ctx, bob.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})
	})

	Describe("DeleteWorkspace", func() {
		It("cascades to memberships, folders, files, invites, and alerts", func() {
			ws, err := env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "doomed", 10, 5)
			Expect(err).NotTo(HaveOccurred())
			mustJoin(env.ctx, ws, bob)
			_, err = env.Workspaces.RegisterFile(env.ctx, workspace.FileParams{
				WorkspaceID: ws.ID,
				UserID:      bob.ID,
				Name:        "doc.txt",
				Path:        "/doc.txt",
				Size:        1,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Workspaces.DeleteWorkspace(env.ctx, ws.ID, admin.ID)).To(Succeed())

			_, err = env.Workspaces.Workspace(env.ctx, ws.ID)
			Expect(err).To(MatchError(store.ErrNotFound))

			members, err := env.Repos.Members.FindAll(env.ctx, store.Filter{"workspace_id": ws.ID}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(BeEmpty())

			folders, err := env.Repos.Folders.FindAll(env.ctx, store.Filter{"workspace_id": ws.ID}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(folders).To(BeEmpty())

			files, err := env.Repos.Files.FindAll(env.ctx, store.Filter{"workspace_id": ws.ID}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(BeEmpty())

			invites, err := env.Repos.Invites.FindAll(env.ctx, store.Filter{"workspace_id": ws.ID}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(invites).To(BeEmpty())
		})

		It("refuses non-admin requesters", func() {
			ws, err := env.Workspaces.CreateWorkspace(env.ctx, admin.ID, "kept", 10, 5)
			Expect(err).NotTo(HaveOccurred())
			mustJoin(env.ctx, ws, bob)

			err = env.Workspaces.DeleteWorkspace(env.ctx, ws.ID, bob.ID)
			Expect(err).To(MatchError(workspace.ErrNotAdmin))
		})
	})
})

func alertTypes(alerts []account.Alert) []string {
	types := make([]string, 0, len(alerts))
	for _, a := range alerts {
		types = append(types, a.AlertType)
	}
	return types
}
