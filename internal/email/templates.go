package email

const textTemplate = `Your Will is Ready
==================

Dear {{will_maker_name}},

Your Last Will and Testament has been generated and is attached to this email.

IMPORTANT: This document is not legally valid until it is properly signed and
witnessed according to Queensland law.

Document Details:
- Generated: {{generated_at}}
- Document Hash: {{document_hash}}

Next Steps:
1. Review the document carefully
2. Print the document (do not sign yet)
3. Follow the Execution Checklist attached
4. Sign in the presence of two independent witnesses
5. Store the original in a safe place

What This Will Does NOT Cover:
- Superannuation (contact your fund for a binding nomination)
- Jointly held assets (these pass to the surviving owner)
- Assets held in trust
- Life insurance proceeds (check your beneficiary nominations)

If you need to make changes, you must create a new will. Do not write on this document.

---
This email was sent from the will generation system.
This is not legal advice. Consult a solicitor for complex situations.
`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #1a4232; color: white; padding: 20px; text-align: center; }
.content { padding: 20px; background: #f9f9f9; }
.warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; }
.important { background: #f8d7da; border-left: 4px solid #dc3545; padding: 15px; margin: 20px 0; }
.footer { padding: 20px; font-size: 12px; color: #666; text-align: center; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>Your Will is Ready</h1></div>
<div class="content">
<p>Dear {{will_maker_name}},</p>
<p>Your Last Will and Testament has been generated and is attached to this email.</p>
<div class="warning"><strong>Important:</strong> This document is not legally valid until it is properly
signed and witnessed according to Queensland law.</div>
<p><strong>Document Details:</strong></p>
<ul>
<li>Generated: {{generated_at}}</li>
<li>Document Hash: {{document_hash}}</li>
</ul>
<p><strong>Next Steps:</strong></p>
<ol>
<li>Review the document carefully</li>
<li>Print the document (do not sign yet)</li>
<li>Follow the Execution Checklist attached</li>
<li>Sign in the presence of two independent witnesses</li>
<li>Store the original in a safe place</li>
</ol>
<div class="important">
<strong>What This Will Does NOT Cover:</strong>
<ul>
<li>Superannuation (contact your fund for a binding nomination)</li>
<li>Jointly held assets (these pass to the surviving owner)</li>
<li>Assets held in trust</li>
<li>Life insurance proceeds (check your beneficiary nominations)</li>
</ul>
</div>
<p>If you need to make changes, you must create a new will. Do not write on this document.</p>
</div>
<div class="footer">
<p>This email was sent from the will generation system.</p>
<p>This is not legal advice. Consult a solicitor for complex situations.</p>
</div>
</div>
</body>
</html>
`
