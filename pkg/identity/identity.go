// Copyright (c) 2025, The amctl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

import (
	"context"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/apigee-monitor/amctl/pkg/config"
	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/gcloud"
)

// IAM is the cloud identity surface the linker needs.
type IAM interface {
	ServiceAccountExists(ctx context.Context, email string) (bool, error)
	CreateServiceAccount(ctx context.Context, id, displayName string) error
	AddProjectBinding(ctx context.Context, member, role string) error
	AddServiceAccountBinding(ctx context.Context, email, member, role string) error
}

// Binding describes the identity link in a form suitable for logging.
type Binding struct {
	GSAEmail  string
	KSA       string
	Namespace string
	Member    string
}

// KSAName returns the in-cluster service account name the chart creates.
func KSAName(release string) string {
	return release + "-" + defaults.KSANameSuffix
}

// WorkloadIdentityMember returns the principal impersonating the GSA.
func WorkloadIdentityMember(project, namespace, ksa string) string {
	return fmt.Sprintf("serviceAccount:%s.svc.id.goog[%s/%s]", project, namespace, ksa)
}

// Linker binds the cloud service account to the cluster service account.
type Linker struct {
	cfg       *config.DeploymentConfig
	iam       IAM
	clientset kubernetes.Interface
}

// NewLinker returns a Linker.
func NewLinker(cfg *config.DeploymentConfig, iam IAM, clientset kubernetes.Interface) *Linker {
	return &Linker{
		cfg:       cfg,
		iam:       iam,
		clientset: clientset,
	}
}

// Binding returns the link the linker establishes.
func (l *Linker) Binding() Binding {
	ksa := KSAName(l.cfg.ReleaseName())
	return Binding{
		GSAEmail:  gcloud.ServiceAccountEmail(l.cfg.GSAName(), l.cfg.ProjectID()),
		KSA:       ksa,
		Namespace: l.cfg.Namespace(),
		Member:    WorkloadIdentityMember(l.cfg.ProjectID(), l.cfg.Namespace(), ksa),
	}
}

// Link ensures the GSA with its role, then the impersonation binding and
// the KSA annotation. Re-running against a linked state changes nothing.
func (l *Linker) Link(ctx context.Context) (Binding, error) {
	b := l.Binding()

	if err := l.ensureServiceAccount(ctx, b.GSAEmail); err != nil {
		return b, err
	}

	if err := l.iam.AddProjectBinding(ctx, gcloud.ServiceAccountMember(b.GSAEmail), defaults.MonitoringRole); err != nil {
		return b, apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("failed to grant %s to %s", defaults.MonitoringRole, b.GSAEmail), err).
			WithRemediation("ensure the caller can set IAM policy on project %s", l.cfg.ProjectID())
	}

	if _, err := l.getKSA(ctx, b); err != nil {
		return b, err
	}

	if err := l.iam.AddServiceAccountBinding(ctx, b.GSAEmail, b.Member, defaults.WorkloadIdentityUserRole); err != nil {
		return b, apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("failed to allow %s to impersonate %s", b.Member, b.GSAEmail), err).
			WithRemediation("ensure Workload Identity is enabled on the cluster and the caller can set IAM policy on %s", b.GSAEmail)
	}

	if err := l.ensureAnnotation(ctx, b); err != nil {
		return b, err
	}

	slog.Info("identity linked",
		"gsa", b.GSAEmail,
		"ksa", b.KSA,
		"namespace", b.Namespace,
	)
	return b, nil
}

// ensureServiceAccount creates the GSA if it does not exist.
func (l *Linker) ensureServiceAccount(ctx context.Context, email string) error {
	exists, err := l.iam.ServiceAccountExists(ctx, email)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("failed to look up service account %s", email), err).
			WithRemediation("run `gcloud auth login` and check access to project %s", l.cfg.ProjectID())
	}
	if exists {
		slog.Debug("service account exists", "gsa", email)
		return nil
	}

	slog.Info("creating service account", "gsa", email)
	if err := l.iam.CreateServiceAccount(ctx, l.cfg.GSAName(), defaults.GSADisplayName); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("failed to create service account %s", email), err).
			WithRemediation("ensure the IAM API is enabled and the caller can create service accounts in %s", l.cfg.ProjectID())
	}
	return nil
}

func (l *Linker) getKSA(ctx context.Context, b Binding) (*corev1.ServiceAccount, error) {
	sa, err := l.clientset.CoreV1().ServiceAccounts(b.Namespace).Get(ctx, b.KSA, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("service account %s not found in namespace %s", b.KSA, b.Namespace), err).
			WithRemediation("run `amctl deploy` first so the release creates it")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("failed to read service account %s/%s", b.Namespace, b.KSA), err).
			WithRemediation("check the kubeconfig context points at the target cluster")
	}
	return sa, nil
}

// ensureAnnotation sets the GSA annotation on the KSA, leaving other
// annotations in place.
func (l *Linker) ensureAnnotation(ctx context.Context, b Binding) error {
	sa, err := l.getKSA(ctx, b)
	if err != nil {
		return err
	}
	if sa.Annotations[defaults.GSAAnnotation] == b.GSAEmail {
		slog.Debug("service account already annotated", "ksa", b.KSA)
		return nil
	}

	updated := sa.DeepCopy()
	if updated.Annotations == nil {
		updated.Annotations = map[string]string{}
	}
	updated.Annotations[defaults.GSAAnnotation] = b.GSAEmail

	if _, err := l.clientset.CoreV1().ServiceAccounts(b.Namespace).Update(ctx, updated, metav1.UpdateOptions{}); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeIdentity,
			fmt.Sprintf("failed to annotate service account %s/%s", b.Namespace, b.KSA), err).
			WithRemediation("ensure the caller can update serviceaccounts in namespace %s", b.Namespace)
	}
	return nil
}
