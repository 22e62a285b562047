package render

// Fixed legal text printed on every flat report.

var declarationItems = []string{
	"I have no direct or indirect interest in the property valued.",
	"I have not been convicted of any offence and sentenced to a term of Imprisonment;",
	"I have not been found guilty of misconduct in my professional capacity.",
	"I have read the Handbook on Policy, Standards and procedure for Real Estate Valuation, 2011 of the IBA and this report is in conformity to the \"Standards\" enshrined for valuation in the Part-B of the above handbook to the best of my ability.",
	"I have read the International Valuation Standards (IVS) and the report submitted to the Bank for the respective asset class is in conformity to the \"Standards\" as enshrined for valuation in the IVS in \"General Standards\" and \"Asset Standards\" as applicable.",
	"I abide by the Model Code of Conduct for empanelment of valuer in the Bank. (Annexure III - A signed copy of same to be taken and kept along with this declaration)",
	"I am registered under Section 34 AB of the Wealth Tax Act, 1957.",
	"I am the proprietor / partner / authorized official of the firm / company, who is competent to sign this valuation report.",
}

type conductSection struct {
	Title string
	Items []string
}

// conductPages holds the model code of conduct split over two pages.
var conductPages = [2][]conductSection{
	{
		{Title: "Integrity and Fairness:", Items: []string{
			"A valuer shall in the conduct of his/its business, follow high standards of integrity and fairness in all his/its dealings with his/its clients and other valuers.",
			"A valuer shall maintain integrity by being honest, straightforward, and forthright in all professional relationships.",
			"A valuer shall endeavor to ensure that he/it provides true and adequate information and shall not misrepresent any facts or situations.",
			"A valuer shall not involve himself/it in any action that would bring disrepute to the profession.",
			"A valuer shall keep public interest foremost while delivering his/its services.",
		}},
		{Title: "Professional Competence and Due Care:", Items: []string{
			"A valuer shall render at all times high standards of service, exercise due diligence, ensure proper care and exercise independent professional judgment.",
			"A valuer shall carry out professional services in accordance with the relevant technical and professional standards that may be specified from time to time.",
			"A valuer shall continuously maintain professional knowledge and skill to provide competent professional service based on up-to-date developments in practice, prevailing regulations/guidelines and techniques.",
			"In the preparation of a valuation report, the valuer shall not disclaim liability for his/its expertise or deny his/its duty of care, except to the extent that the assumptions are based on statements of fact provided by the company or its auditors or consultants or information unavailable in public domain and not generated by the valuer.",
			"A valuer shall not carry out any instruction of the client insofar as they are incompatible with the requirements of integrity, objectivity and independence.",
			"A valuer shall clearly state to his client the services that he would be competent to provide and the services for which he would be relying on other valuers or professionals or for which client can seek independent expert opinion or a separate arrangement with other valuers.",
		}},
		{Title: "Independence and Disclosure of Interest:", Items: []string{
			"A valuer shall act with objectivity in his/its professional dealings by ensuring that his/its decisions are not biased by or subject to any pressure, coercion, or undue influence of any party, whether directly connected to the valuation assignment or not.",
			"A valuer shall not take up an assignment if he/it or any of his/its relatives or associates is not independent in terms of association to the company.",
			"A valuer shall maintain complete independence in his/its professional relationships and shall conduct the valuation independent of external influences.",
			"A valuer shall wherever necessary disclose to the clients, possible sources of conflicts of duties and interests, while providing unbiased services.",
			"A valuer shall not deal in securities of any subject company after any time when he/it first becomes aware of the possibility of such association with the valuation, and in accordance with the Securities and Exchange Board of India (Prohibition of Insider Trading) Regulations, 2015 or till the time the valuation report becomes public, whichever is earlier.",
			"A valuer shall not indulge in \"mandate snatching\" or offering \"convenience valuations\" in order to cater to a company or client's needs.",
			"As an independent valuer, the valuer shall not charge success fee (Success fees may be defined as a compensation to the valuer paid to any third party for successful closure of transaction, In this case, approval of credit proposals).",
			"In any fairness opinion or independent expert opinion submitted by a valuer, if there has been a prior engagement in an unconnected transaction, the valuer shall declare the association with the company during the last five years.",
		}},
	},
	{
		{Title: "Confidentiality:", Items: []string{
			"A valuer shall not use or divulge to other clients or any other party any confidential information about the subject company, which has come to his/its knowledge without prior and specific authority or unless there is a legal or professional right or duty to disclose.",
		}},
		{Title: "Record Management:", Items: []string{
			"A valuer shall ensure that he/ it maintains written contemporaneous records for any decision taken, the rationale for taking the decision, and the information and evidence in support of such decision. This shall be maintained so as to sufficiently enable a reasonable person to take a view on the appropriateness of his/its decisions and actions.",
			"A valuer shall operate and be available for inspections and investigations carried out by the authority, any person authorized by the authority, the registered valuers organization with which he/it is registered or any other statutory regulatory body.",
			"A valuer shall provide all information and records as may be required by the authority, the Tribunal, Appellate Tribunal, the registered valuers organization with which he/it is registered, or any other statutory regulatory body.",
			"A valuer while inspecting the confidentiality of information acquired during the course of performing professional services, shall maintain proper working papers for a period of three years or such longer period as required in its contract for a specific valuation, for production before a regulator or for a peer review. In the event of a pending case before the Tribunal or Appellate Tribunal, the record shall be maintained till the disposal of the case.",
		}},
		{Title: "Gifts and hospitality:", Items: []string{
			"A valuer or his/its relative shall not accept gifts or hospitality which undermines or affects his independence as a valuer.",
		}},
		{Title: "Exploitation:", Items: []string{
			"For the purposes of this code the term 'relative' shall have the same meaning as defined in clause (77) of Section 2 of the Companies Act, 2013 (18 of 2013).",
			"A valuer shall not offer gifts or hospitality or an inducement to any other person with a view to obtain or retain work for himself/ itself, or to obtain or retain an advantage in the conduct of profession for himself/ itself.",
		}},
		{Title: "Remuneration and Costs:", Items: []string{
			"A valuer shall provide services for remuneration which is charged in a transparent manner, is a reasonable reflection of the work necessarily and properly undertaken, and is not inconsistent with the applicable rules.",
			"A valuer shall not accept any fees or charges other than those which are disclosed in a written contract with the person to whom he would be rendering service.",
		}},
		{Title: "Occupation, employability and restrictions:", Items: []string{
			"A valuer shall refrain from accepting too many assignments, if he/it is unlikely to be able to devote adequate time to each of his/ its assignments.",
			"A valuer shall not conduct business which in the opinion of the authority or the registered valuer organization discredits the profession.",
		}},
	},
}
