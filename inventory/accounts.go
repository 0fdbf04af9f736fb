package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"

	lgerrors "github.com/byteness/leasegate/errors"
)

// AccountSource lists the accounts a request can target.
type AccountSource interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}

type organizationsAPI interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
}

// OrgAccountSource lists member accounts from AWS Organizations. The
// caller must run with management-account or delegated-admin credentials.
type OrgAccountSource struct {
	client organizationsAPI
}

// NewOrgAccountSource returns a source backed by the given Organizations
// client.
func NewOrgAccountSource(client *organizations.Client) *OrgAccountSource {
	return &OrgAccountSource{client: client}
}

// NewOrgAccountSourceWithClient allows injecting a mock client for testing.
func NewOrgAccountSourceWithClient(client organizationsAPI) *OrgAccountSource {
	return &OrgAccountSource{client: client}
}

// ListAccounts pages through the full organization. Suspended and
// pending-closure accounts are included; callers filter with Active.
func (s *OrgAccountSource) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	var nextToken *string

	for {
		out, err := s.client.ListAccounts(ctx, &organizations.ListAccountsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, lgerrors.WrapOrganizationsError(err)
		}

		for _, acct := range out.Accounts {
			accounts = append(accounts, Account{
				ID:     aws.ToString(acct.Id),
				Name:   aws.ToString(acct.Name),
				Email:  aws.ToString(acct.Email),
				Status: string(acct.Status),
			})
		}

		if out.NextToken == nil {
			return accounts, nil
		}
		nextToken = out.NextToken
	}
}
